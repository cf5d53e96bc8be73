package handlers

import (
	"context"
	"net/url"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/emigresto/telegram-resto-bot/internal/bot/shared/fsmutil"
	"github.com/emigresto/telegram-resto-bot/internal/ctxutil"
)

// Réglage du serveur API par chat — l'équivalent de l'écran ApiConfig de
// l'app mobile d'origine.

var apiURLPending = struct {
	mu sync.Mutex
	m  map[int64]bool
}{m: make(map[int64]bool)}

func GetAPIURLState(chatID int64) bool {
	apiURLPending.mu.Lock()
	defer apiURLPending.mu.Unlock()
	return apiURLPending.m[chatID]
}

func setAPIURLState(chatID int64, on bool) {
	apiURLPending.mu.Lock()
	defer apiURLPending.mu.Unlock()
	if !on {
		delete(apiURLPending.m, chatID)
		return
	}
	apiURLPending.m[chatID] = true
}

func StartAPIURLFSM(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ctx = ctxutil.WithChatID(ctx, chatID)

	current := env.Cfg.APIBaseURL
	if sess, err := env.Sessions.Get(ctx, chatID); err == nil && sess != nil && sess.BaseURL != "" {
		current = sess.BaseURL + " (personnalisée)"
	}
	setAPIURLState(chatID, true)
	env.reply(chatID, "🌐 URL actuelle : "+current+
		"\nEnvoyez la nouvelle URL de l'API, « defaut » pour revenir à la configuration globale, ou « annuler ».")
}

func HandleAPIURLText(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ctx = ctxutil.WithChatID(ctx, chatID)
	if !GetAPIURLState(chatID) {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if fsmutil.IsCancelText(text) {
		setAPIURLState(chatID, false)
		env.reply(chatID, "Réglage abandonné.")
		return
	}

	if strings.EqualFold(text, "defaut") || strings.EqualFold(text, "défaut") {
		setAPIURLState(chatID, false)
		if err := env.Sessions.SetBaseURL(ctx, chatID, ""); err != nil {
			env.replyErr(chatID, err)
			return
		}
		env.reply(chatID, "✅ URL globale rétablie.")
		return
	}

	u, err := url.Parse(text)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		env.reply(chatID, "⚠️ URL invalide (http(s)://hôte/...), réessayez :")
		return
	}
	setAPIURLState(chatID, false)
	if err := env.Sessions.SetBaseURL(ctx, chatID, text); err != nil {
		env.replyErr(chatID, err)
		return
	}
	env.reply(chatID, "✅ API configurée sur "+text)
}
