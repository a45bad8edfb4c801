package service

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"hospital-records/internal/domain/entity"
	"hospital-records/internal/infrastructure/filestore"
	"hospital-records/pkg/clock"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func newTestAudit(t *testing.T) AuditService {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	clk := clock.Fixed(time.Date(2030, 1, 2, 9, 15, 0, 0, time.UTC))
	files := filestore.NewWithFs(afero.NewMemMapFs(), "/data/backup", clk, log)
	return NewAuditService(files, "/data/audit.log", clk, log)
}

func TestRecentOnEmptyTrail(t *testing.T) {
	entries, err := newTestAudit(t).Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestRecordAndRecentNewestFirst(t *testing.T) {
	audit := newTestAudit(t)
	ctx := WithActor(context.Background(), "admin")

	audit.Record(ctx, entity.AuditActionAppointmentBook, "Appointment", "APT001", "first")
	audit.Record(ctx, entity.AuditActionAppointmentCancel, "Appointment", "APT001", "second")
	audit.Record(context.Background(), entity.AuditActionPrescriptionDispense, "Prescription", "PRE001", "total=1|2\nx")

	entries, err := audit.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	latest := entries[0]
	if latest.Actor != SystemActor || latest.EntityID != "PRE001" {
		t.Errorf("latest = %+v", latest)
	}
	if latest.Detail != "total=1/2 x" {
		t.Errorf("detail = %q, delimiters not replaced", latest.Detail)
	}
	if latest.Timestamp != "2030-01-02 09:15:00" {
		t.Errorf("timestamp = %q", latest.Timestamp)
	}
	if entries[1].Detail != "second" || entries[1].Actor != "admin" {
		t.Errorf("second newest = %+v", entries[1])
	}

	all, _ := audit.Recent(0)
	if len(all) != 3 {
		t.Errorf("Recent(0) returned %d entries, want all 3", len(all))
	}
}

func TestActorFromContext(t *testing.T) {
	if got := ActorFromContext(context.Background()); got != SystemActor {
		t.Errorf("empty context actor = %q", got)
	}
	if got := ActorFromContext(WithActor(context.Background(), "")); got != SystemActor {
		t.Errorf("blank actor = %q", got)
	}
	if got := ActorFromContext(WithActor(context.Background(), "bob")); got != "bob" {
		t.Errorf("actor = %q", got)
	}
}

func TestRecentHugeLimitAllocatesByTrailSize(t *testing.T) {
	audit := newTestAudit(t)
	audit.Record(context.Background(), entity.AuditActionAppointmentBook, "Appointment", "APT001", "only")

	entries, err := audit.Recent(math.MaxInt)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if cap(entries) > 10 {
		t.Errorf("capacity = %d, want it bounded by the trail size", cap(entries))
	}
}
