package callrequest

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically expires overdue pending requests.
//
// Expiry is the only transition not driven by a user action, so it runs in
// one background loop rather than being checked inline on every read.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	log      *slog.Logger

	// onExpired, when set, is called with each batch of expired requests
	// (used to notify connected creators that a ring went unanswered).
	onExpired func(ctx context.Context, expired []CallRequest)
}

func NewSweeper(svc *Service, interval time.Duration, log *slog.Logger, onExpired func(ctx context.Context, expired []CallRequest)) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Sweeper{svc: svc, interval: interval, log: log, onExpired: onExpired}
}

// Run blocks until ctx is cancelled. Errors are logged and the loop continues;
// a failed sweep must not take the process down.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			expired, err := s.svc.ExpireDue(ctx)
			if err != nil {
				s.log.Error("expiry sweep failed", "err", err)
				continue
			}
			if len(expired) == 0 {
				continue
			}
			s.log.Info("expired overdue call requests", "count", len(expired))
			if s.onExpired != nil {
				s.onExpired(ctx, expired)
			}
		}
	}
}
