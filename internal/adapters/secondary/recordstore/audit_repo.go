package recordstore

import (
	"context"
	"fmt"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

// Audit records are keyed by model id; entries without a model use "".
type auditRepo struct {
	log ports.RecordLog
}

func NewAuditLogRepository(log ports.RecordLog) ports.AuditLogRepository {
	return &auditRepo{log: log}
}

func (r *auditRepo) List(ctx context.Context, filter domain.AuditFilter, asOf int64) ([]*domain.AuditLogEntry, error) {
	recs, err := r.log.List(ctx, domain.CollectionAuditLog, filter.ModelID, asOf)
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	out := make([]*domain.AuditLogEntry, 0, len(recs))
	for _, rec := range recs {
		e, err := decode[domain.AuditLogEntry](rec)
		if err != nil {
			return nil, err
		}
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *auditRepo) Last(ctx context.Context) (*domain.AuditLogEntry, error) {
	recs, err := r.log.List(ctx, domain.CollectionAuditLog, "", 0)
	if err != nil {
		return nil, fmt.Errorf("read last audit entry: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return decode[domain.AuditLogEntry](recs[len(recs)-1])
}
