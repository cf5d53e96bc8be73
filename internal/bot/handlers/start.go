package handlers

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/emigresto/telegram-resto-bot/internal/api"
	"github.com/emigresto/telegram-resto-bot/internal/bot/menu"
	"github.com/emigresto/telegram-resto-bot/internal/ctxutil"
	"github.com/emigresto/telegram-resto-bot/internal/tg"
)

func HandleStart(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ctx = ctxutil.WithChatID(ctx, chatID)

	sess, err := env.Sessions.Get(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, err)
		return
	}
	if !sess.LoggedIn() {
		out := tgbotapi.NewMessage(chatID, "Bienvenue sur EmiGResto 🍽\nConnectez-vous pour gérer les réservations du restaurant universitaire.")
		out.ReplyMarkup = menu.Anonymous()
		_, _ = tg.Send(env.Bot, out)
		return
	}

	out := tgbotapi.NewMessage(chatID, "Bon retour, "+sess.Email+" !\nChoisissez une action :")
	out.ReplyMarkup = menu.Main()
	_, _ = tg.Send(env.Bot, out)
}

func HandleLogout(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ctx = ctxutil.WithChatID(ctx, chatID)

	cl, err := env.ClientFor(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, err)
		return
	}
	dropGridState(chatID)
	if err := cl.Logout(ctx); err != nil && !errors.Is(err, api.ErrSessionExpiree) {
		// la session locale est purgée quoi qu'il arrive
		env.Log.Warn("logout serveur en échec", zap.Error(err))
	}
	out := tgbotapi.NewMessage(chatID, "Déconnecté. À bientôt !")
	out.ReplyMarkup = menu.Anonymous()
	_, _ = tg.Send(env.Bot, out)
}

// forceLogin — session expirée: on purge et on renvoie vers la connexion.
func forceLogin(ctx context.Context, env *Env, chatID int64) {
	dropGridState(chatID)
	_ = env.Sessions.Clear(ctx, chatID)
	out := tgbotapi.NewMessage(chatID, "🔒 Session expirée, reconnectez-vous.")
	out.ReplyMarkup = menu.Anonymous()
	_, _ = tg.Send(env.Bot, out)
}
