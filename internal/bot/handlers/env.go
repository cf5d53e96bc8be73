package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/emigresto/telegram-resto-bot/internal/api"
	"github.com/emigresto/telegram-resto-bot/internal/config"
	"github.com/emigresto/telegram-resto-bot/internal/session"
	"github.com/emigresto/telegram-resto-bot/internal/tg"
)

// Env — dépendances partagées des handlers. Les états de flow restent
// dans des maps par chat au niveau du paquet.
type Env struct {
	Bot      *tgbotapi.BotAPI
	Sessions *session.Store
	Cfg      *config.Config
	Log      *zap.Logger
}

// ClientFor — client API lié à la session du chat: tokens du chat,
// base URL du chat si configurée, sinon celle de la config.
func (e *Env) ClientFor(ctx context.Context, chatID int64) (*api.Client, error) {
	base := e.Cfg.APIBaseURL
	sess, err := e.Sessions.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if sess != nil && sess.BaseURL != "" {
		base = sess.BaseURL
	}
	return api.New(base, e.Sessions.Tokens(chatID), e.Log)
}

func (e *Env) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = tg.Send(e.Bot, msg)
}

// replyErr — panneau d'erreur type: jamais d'écran vide silencieux.
func (e *Env) replyErr(chatID int64, err error) {
	e.reply(chatID, "❌ Erreur : "+api.UserMessage(err))
}
