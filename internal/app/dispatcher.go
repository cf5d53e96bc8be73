package app

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/emigresto/telegram-resto-bot/internal/bot/handlers"
	"github.com/emigresto/telegram-resto-bot/internal/bot/menu"
	"github.com/emigresto/telegram-resto-bot/internal/metrics"
)

// Dispatcher — routage des updates Telegram. Chaque update est traitée
// dans sa goroutine, sérialisée par chat via le ChatLimiter: côté client
// les toggles d'une même grille partent donc un à la fois.
type Dispatcher struct {
	env     *handlers.Env
	limiter *ChatLimiter
}

func NewDispatcher(env *handlers.Env) *Dispatcher {
	return &Dispatcher{env: env, limiter: NewChatLimiter()}
}

func (d *Dispatcher) Dispatch(ctx context.Context, update tgbotapi.Update) {
	metrics.BotUpdates.Inc()

	switch {
	case update.CallbackQuery != nil:
		chatID := update.CallbackQuery.Message.Chat.ID
		go d.limiter.Do(chatID, func() {
			d.handleCallback(ctx, update.CallbackQuery)
		})
	case update.Message != nil:
		chatID := update.Message.Chat.ID
		go d.limiter.Do(chatID, func() {
			d.handleMessage(ctx, update.Message)
		})
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if len(cq.Data) >= 5 && cq.Data[:5] == "grid_" {
		handlers.HandleGridCallback(ctx, d.env, cq)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	env := d.env

	switch msg.Text {
	case "/start":
		handlers.HandleStart(ctx, env, msg)
		return
	case "/login", menu.BtnLogin:
		handlers.StartLoginFSM(ctx, env, msg)
		return
	case "/register", menu.BtnRegister:
		handlers.StartRegisterFSM(ctx, env, msg)
		return
	case "/reservations", menu.BtnReservations:
		handlers.StartGridFSM(ctx, env, msg)
		return
	case "/historique", menu.BtnHistorique:
		handlers.HandleHistory(ctx, env, msg)
		return
	case "/export", menu.BtnExport:
		handlers.HandleExport(ctx, env, msg)
		return
	case "/api", menu.BtnAPIConfig:
		handlers.StartAPIURLFSM(ctx, env, msg)
		return
	case "/logout", menu.BtnLogout:
		handlers.HandleLogout(ctx, env, msg)
		return
	}

	// saisies libres: un FSM à la fois, par priorité
	switch {
	case handlers.GetLoginState(msg.Chat.ID) != nil:
		handlers.HandleLoginText(ctx, env, msg)
	case handlers.GetRegisterState(msg.Chat.ID) != nil:
		handlers.HandleRegisterText(ctx, env, msg)
	case handlers.GetAPIURLState(msg.Chat.ID):
		handlers.HandleAPIURLText(ctx, env, msg)
	case handlers.GetGridState(msg.Chat.ID) != nil:
		handlers.HandleGridText(ctx, env, msg)
	default:
		out := tgbotapi.NewMessage(msg.Chat.ID, "⚠️ Commande inconnue. Utilisez /start")
		_, _ = env.Bot.Send(out)
	}
}
