package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/emigresto/telegram-resto-bot/internal/session"
)

// SessionCleanup — purge les sessions sans activité depuis maxAge. Les
// refresh tokens du backend expirent bien avant; garder ces lignes ne
// sert à rien.
func SessionCleanup(store *session.Store, maxAge time.Duration, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		n, err := store.DeleteStale(ctx, maxAge)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info("sessions inactives purgées", zap.Int64("count", n))
		}
		return nil
	}
}
