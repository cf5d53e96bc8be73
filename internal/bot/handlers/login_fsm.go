package handlers

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/emigresto/telegram-resto-bot/internal/bot/menu"
	"github.com/emigresto/telegram-resto-bot/internal/bot/shared/fsmutil"
	"github.com/emigresto/telegram-resto-bot/internal/ctxutil"
	"github.com/emigresto/telegram-resto-bot/internal/tg"
)

type loginState struct {
	Step  int // 1: email, 2: mot de passe
	Email string
}

var loginStates = struct {
	mu sync.Mutex
	m  map[int64]*loginState
}{m: make(map[int64]*loginState)}

func GetLoginState(chatID int64) *loginState {
	loginStates.mu.Lock()
	defer loginStates.mu.Unlock()
	return loginStates.m[chatID]
}

func setLoginState(chatID int64, st *loginState) {
	loginStates.mu.Lock()
	defer loginStates.mu.Unlock()
	if st == nil {
		delete(loginStates.m, chatID)
		return
	}
	loginStates.m[chatID] = st
}

func StartLoginFSM(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	setLoginState(chatID, &loginState{Step: 1})
	env.reply(chatID, "📧 Votre adresse email ? (ou « annuler »)")
}

func HandleLoginText(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ctx = ctxutil.WithChatID(ctxutil.WithOp(ctx, "login"), chatID)
	st := GetLoginState(chatID)
	if st == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if fsmutil.IsCancelText(text) {
		setLoginState(chatID, nil)
		env.reply(chatID, "Connexion annulée.")
		return
	}

	switch st.Step {
	case 1:
		if !strings.Contains(text, "@") {
			env.reply(chatID, "⚠️ Adresse invalide, réessayez :")
			return
		}
		st.Email = text
		st.Step = 2
		env.reply(chatID, "🔑 Votre mot de passe ?")
	case 2:
		setLoginState(chatID, nil)
		// efface le message contenant le mot de passe
		_, _ = tg.Request(env.Bot, tgbotapi.NewDeleteMessage(chatID, msg.MessageID))
		doLogin(ctx, env, chatID, st.Email, text)
	}
}

func doLogin(ctx context.Context, env *Env, chatID int64, email, password string) {
	cl, err := env.ClientFor(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, err)
		return
	}
	pair, err := cl.Login(ctx, email, password)
	if err != nil {
		env.replyErr(chatID, err)
		return
	}
	if err := env.Sessions.SaveLogin(ctx, chatID, pair.Access, pair.Refresh, 0, email); err != nil {
		env.replyErr(chatID, err)
		return
	}
	// identité complète (id, rôle) maintenant que le bearer est en place
	me, err := cl.Me(ctx)
	if err != nil {
		env.Log.Warn("user-details après login en échec", zap.Error(err))
	} else {
		_ = env.Sessions.SaveLogin(ctx, chatID, pair.Access, pair.Refresh, me.ID, me.Email)
	}

	out := tgbotapi.NewMessage(chatID, "✅ Connecté !")
	out.ReplyMarkup = menu.Main()
	_, _ = tg.Send(env.Bot, out)
}
