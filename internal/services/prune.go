package services

import (
	"time"

	"github.com/pasetolabs/paseto-api/pkg/logger"
	"github.com/robfig/cron/v3"
)

// StartSessionPruneScheduler deletes expired refresh sessions every night and
// once immediately at startup. Returns the scheduler so the caller can stop
// it on shutdown.
func StartSessionPruneScheduler(authService *AuthService) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("30 3 * * *", func() {
		runSessionPrune(authService)
	}); err != nil {
		logger.Error().Err(err).Msg("failed to schedule session pruning")
		return c
	}

	c.Start()
	go runSessionPrune(authService)

	return c
}

func runSessionPrune(s *AuthService) {
	deleted, err := s.PruneExpiredSessions(time.Now())
	if err != nil {
		logger.Error().Err(err).Msg("failed to prune expired refresh sessions")
		return
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Msg("pruned expired refresh sessions")
	}
}
