package services

import (
	"context"
	"time"

	"ar-viewer-backend/internal/logger"
	"ar-viewer-backend/internal/storage"
	"ar-viewer-backend/internal/store"
)

// Sweeper is the authoritative backstop for sessions that never sent a
// teardown signal. On a fixed interval it reaps expired temp directories and
// the session records that reference them, using one shared max age so the
// two views stay in sync. Both sides tolerate the other having already
// cleaned up.
type Sweeper struct {
	sessions *store.SessionStore
	files    *storage.FileStore
	maxAge   time.Duration
	interval time.Duration
	log      *logger.Logger
}

func NewSweeper(sessions *store.SessionStore, files *storage.FileStore, maxAge, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		files:    files,
		maxAge:   maxAge,
		interval: interval,
		log:      log,
	}
}

// Run ticks until the context is cancelled. Intended to run in its own
// goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs one pass: expired session records first, then the directory
// scan, which also covers directories no record points at.
func (s *Sweeper) Sweep() {
	expired := s.sessions.Expired(s.maxAge)
	for _, upload := range expired {
		s.sessions.DeleteBySession(upload.SessionID)
		s.files.CleanupTempSession(upload.SessionID)
	}
	if len(expired) > 0 {
		s.log.Info("reaped expired upload sessions", "count", len(expired))
	}

	s.files.CleanupExpiredTempUploads(s.maxAge)
}
