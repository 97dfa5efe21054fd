package services

import (
	"context"
	"fmt"
	"slices"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

type AuditService struct {
	repo ports.AuditLogRepository
}

func NewAuditService(repo ports.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// List returns matching entries newest first, at most filter.Limit of them.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLogEntry, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = domain.DefaultAuditLimit
	case filter.Limit > domain.MaxAuditLimit:
		filter.Limit = domain.MaxAuditLimit
	}

	entries, err := s.repo.List(ctx, filter, 0)
	if err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	if len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

// Verify walks the whole chain, checking indexes, links and hashes.
func (s *AuditService) Verify(ctx context.Context) (*domain.ChainVerification, error) {
	entries, err := s.repo.List(ctx, domain.AuditFilter{}, 0)
	if err != nil {
		return nil, err
	}
	return VerifyChain(entries), nil
}

// VerifyChain checks entries in commit order and reports the first break.
func VerifyChain(entries []*domain.AuditLogEntry) *domain.ChainVerification {
	result := &domain.ChainVerification{Valid: true, Entries: len(entries)}
	prevHash := ""
	for i, e := range entries {
		broken := func(reason string) *domain.ChainVerification {
			idx := e.Index
			result.Valid = false
			result.BrokenAt = &idx
			result.Reason = reason
			return result
		}
		if want := int64(i + 1); e.Index != want {
			return broken(fmt.Sprintf("index %d, expected %d", e.Index, want))
		}
		if e.PrevHash != prevHash {
			return broken("prev_hash does not match the preceding entry")
		}
		hash, err := e.ComputeHash()
		if err != nil {
			return broken(err.Error())
		}
		if hash != e.Hash {
			return broken("hash does not match entry contents")
		}
		prevHash = e.Hash
	}
	return result
}
