package ctxutil

import (
	"context"
	"time"
)

// clés privées pour éviter les collisions
type key int

const (
	keyChatID key = iota
	keyOpName
)

// WithChatID — propage le chatID Telegram dans le contexte (logs/trace).
func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, keyChatID, chatID)
}

func ChatID(ctx context.Context) (int64, bool) {
	v := ctx.Value(keyChatID)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// WithOp — nom de l'opération en cours (ex: "grid:toggle").
func WithOp(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyOpName, name)
}

func Op(ctx context.Context) (string, bool) {
	v := ctx.Value(keyOpName)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Timeouts par défaut. Constantes pour l'instant.
var (
	DefaultAPITimeout = 15 * time.Second
	DefaultDBTimeout  = 5 * time.Second
)

// WithAPITimeout — timeout standard pour un appel au backend EmiGResto.
// Si le parent expire plus tôt, on garde son délai restant.
func WithAPITimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withBudget(parent, DefaultAPITimeout)
}

// WithDBTimeout — timeout standard pour la base de sessions.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withBudget(parent, DefaultDBTimeout)
}

func withBudget(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		if remain := time.Until(dl); remain < d {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, d)
}
