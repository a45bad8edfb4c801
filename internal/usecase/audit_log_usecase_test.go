package usecase

import (
	"context"
	"io"
	"testing"

	"hospital-records/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

type recordingAudit struct {
	limits []int
}

func (a *recordingAudit) Record(context.Context, string, string, string, string) {}

func (a *recordingAudit) Recent(limit int) ([]entity.AuditEntry, error) {
	a.limits = append(a.limits, limit)
	return []entity.AuditEntry{}, nil
}

func TestGetRecentAuditLogsClampsLimit(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	audit := &recordingAudit{}
	uc := NewAuditLogUsecase(log, audit)

	for _, limit := range []int{0, -5, 20, 1_000_000} {
		if _, err := uc.GetRecentAuditLogs(context.Background(), limit); err != nil {
			t.Fatalf("GetRecentAuditLogs(%d): %v", limit, err)
		}
	}

	want := []int{defaultAuditLimit, defaultAuditLimit, 20, maxAuditLimit}
	if len(audit.limits) != len(want) {
		t.Fatalf("Recent called %d times, want %d", len(audit.limits), len(want))
	}
	for i, got := range audit.limits {
		if got != want[i] {
			t.Errorf("call %d passed limit %d, want %d", i, got, want[i])
		}
	}
}
