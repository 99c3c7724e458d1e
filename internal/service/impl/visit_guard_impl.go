package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blogger-auth/internal/domain"
	"blogger-auth/internal/observability/metrics"
	"blogger-auth/internal/service"
	"blogger-auth/internal/store"
)

const (
	// Sliding window over the visit log: a 6th request for the same
	// (ip, url) pair inside 10 seconds is denied.
	visitWindow   = 10 * time.Second
	visitMaxCount = 4
)

var _ service.RateGuard = (*VisitGuardImpl)(nil)

type VisitGuardImpl struct {
	Store dataStore

	now func() time.Time
}

func NewVisitGuardImpl(st *store.Store) *VisitGuardImpl {
	return &VisitGuardImpl{
		Store: gormStoreAdapter{store: st},
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (g *VisitGuardImpl) nowTime() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now().UTC()
}

// Admit counts recent visits for the exact (ip, url) pair and either denies
// or appends a fresh visit. The count-then-insert is not atomic; concurrent
// requests can transiently exceed the budget, which is acceptable for an
// abuse deterrent. Store errors still fail closed, but as plain errors, so
// ErrRateLimited (and its 429) stays reserved for an exceeded budget.
func (g *VisitGuardImpl) Admit(ctx context.Context, ip, url string) error {
	now := g.nowTime()

	count, err := g.Store.Visits().CountSince(ctx, ip, url, now.Add(-visitWindow))
	if err != nil {
		slog.Warn("visit count failed", "url", url, "error", err)
		return fmt.Errorf("visit count: %w", err)
	}
	if count > visitMaxCount {
		metrics.RateLimitedTotal.WithLabelValues(url).Inc()
		return domain.ErrRateLimited
	}

	if err := g.Store.Visits().Create(ctx, &domain.Visit{IP: ip, URL: url, CreatedAt: now}); err != nil {
		slog.Warn("visit not recorded", "url", url, "error", err)
		return fmt.Errorf("visit record: %w", err)
	}
	return nil
}
