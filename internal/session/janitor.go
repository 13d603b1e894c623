package session

// janitor.go runs the idle-session sweep in the background.
//
// The janitor is long-running and context-aware for graceful shutdown. It
// logs what it removes but never stops the application.

import (
	"context"
	"time"
)

// RunJanitor sweeps idle sessions every interval until ctx is cancelled.
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	st.logger.Info("session janitor started",
		"interval", interval.String(),
		"idle_timeout", st.idleTimeout.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			st.logger.Info("session janitor stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if removed := st.Sweep(); removed > 0 {
				st.logger.Info("expired idle sessions",
					"removed", removed,
					"open", st.Len(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}
