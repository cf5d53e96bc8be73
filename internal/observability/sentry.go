// Package observability — remontée d'erreurs vers Sentry. Sans DSN le
// paquet est inerte: Init rend un no-op et CaptureErr ne fait rien,
// ce qui est le mode normal en développement.
package observability

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// Init configure Sentry pour ce déploiement (environnement + release du
// bot). La fonction retournée vide la file d'événements; elle est
// toujours non-nil et se défère dans main.
func Init(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return func() {}, fmt.Errorf("sentry: %w", err)
	}
	return func() { sentry.Flush(flushTimeout) }, nil
}

// CaptureErr — pour les erreurs "système" (5xx Telegram, réseau, base).
// Les erreurs métier restent dans les logs et les réponses utilisateur.
func CaptureErr(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}
