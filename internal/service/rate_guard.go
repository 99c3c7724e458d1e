package service

import "context"

// RateGuard admits or denies a request based on the count of recent visits
// for the exact (ip, url) pair. Denial is domain.ErrRateLimited.
type RateGuard interface {
	Admit(ctx context.Context, ip, url string) error
}
