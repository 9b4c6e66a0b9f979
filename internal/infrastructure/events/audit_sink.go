package events

import (
	"context"

	"github.com/hilthontt/breakout/internal/domain"
)

// AuditSink writes events straight to the audit log. It is used when no
// broker sits between the coordinator and the audit store.
type AuditSink struct {
	repo domain.AuditRepository
}

func NewAuditSink(repo domain.AuditRepository) *AuditSink {
	return &AuditSink{repo: repo}
}

func (s *AuditSink) Publish(ctx context.Context, ev domain.Event) error {
	return s.repo.Log(ctx, domain.NewAuditLog(ev))
}
