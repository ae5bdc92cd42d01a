package stats

import (
	"context"
	"time"

	"github.com/rajcricket/prepbot/core/logger"
	"log/slog"
)

// Recorder is the persistence surface the service needs. *Store satisfies it;
// tests substitute a fake.
type Recorder interface {
	UpsertUser(ctx context.Context, userID int64, firstName string) error
	Increment(ctx context.Context, action string) error
}

// Service records usage best-effort: storage failures are logged and
// swallowed so the user-facing flow never degrades because of them.
type Service struct {
	rec     Recorder
	timeout time.Duration
}

// NewService wraps a recorder. A zero timeout defaults to 3s per write.
func NewService(rec Recorder, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{rec: rec, timeout: timeout}
}

// TrackUser registers or refreshes a user.
func (s *Service) TrackUser(ctx context.Context, userID int64, firstName string) {
	if s == nil || s.rec == nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.rec.UpsertUser(wctx, userID, firstName); err != nil {
		logger.Warn(ctx, "stats", "track.user.fail",
			slog.Int64("user_id", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}

// Count bumps a usage counter.
func (s *Service) Count(ctx context.Context, action string) {
	if s == nil || s.rec == nil || action == "" {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.rec.Increment(wctx, action); err != nil {
		logger.Warn(ctx, "stats", "count.fail",
			slog.String("counter", action),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}
