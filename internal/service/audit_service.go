package service

import (
	"context"
	"errors"
	"os"
	"strings"

	"hospital-records/internal/codec"
	"hospital-records/internal/domain/entity"
	"hospital-records/pkg/clock"

	"github.com/sirupsen/logrus"
)

const auditTimestampLayout = "2006-01-02 15:04:05"

// SystemActor is recorded when no user is attached to the context.
const SystemActor = "system"

type actorKey struct{}

// WithActor attaches the acting username to ctx for audit entries.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

// ActorFromContext returns the username set by WithActor, or SystemActor.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return SystemActor
}

// AuditFiles is the slice of the FileStore the audit trail needs.
type AuditFiles interface {
	AppendLine(path, line string) error
	ReadLines(path string) ([]string, error)
}

type AuditService interface {
	// Record appends an entry. Failures are logged, never returned.
	Record(ctx context.Context, action, entityName, entityID, detail string)
	// Recent returns up to limit entries, newest first.
	Recent(limit int) ([]entity.AuditEntry, error)
}

type auditService struct {
	files AuditFiles
	path  string
	clock clock.Clock
	log   *logrus.Logger
	codec codec.Codec[entity.AuditEntry]
}

func NewAuditService(files AuditFiles, path string, clk clock.Clock, log *logrus.Logger) AuditService {
	return &auditService{
		files: files,
		path:  path,
		clock: clk,
		log:   log,
		codec: codec.NewAuditCodec(),
	}
}

func (s *auditService) Record(ctx context.Context, action, entityName, entityID, detail string) {
	entry := entity.AuditEntry{
		Timestamp: s.clock.Now().Format(auditTimestampLayout),
		Actor:     sanitize(ActorFromContext(ctx)),
		Action:    action,
		Entity:    entityName,
		EntityID:  sanitize(entityID),
		Detail:    sanitize(detail),
	}

	if err := s.files.AppendLine(s.path, s.codec.Encode(entry)); err != nil {
		s.log.Warnf("Failed to write audit entry %s %s: %+v", action, entityID, err)
	}
}

func (s *auditService) Recent(limit int) ([]entity.AuditEntry, error) {
	lines, err := s.files.ReadLines(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []entity.AuditEntry{}, nil
	}
	if err != nil {
		s.log.Warnf("Failed to read audit trail %s: %+v", s.path, err)
		return nil, err
	}

	capacity := len(lines)
	if limit > 0 {
		capacity = min(limit, capacity)
	}
	entries := make([]entity.AuditEntry, 0, capacity)
	for i := len(lines) - 1; i >= 0 && (limit <= 0 || len(entries) < limit); i-- {
		entry, err := s.codec.Decode(lines[i])
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// sanitize keeps free text from breaking the line format.
func sanitize(s string) string {
	return strings.NewReplacer("|", "/", "\r", " ", "\n", " ").Replace(s)
}
