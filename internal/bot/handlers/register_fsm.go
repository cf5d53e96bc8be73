package handlers

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/emigresto/telegram-resto-bot/internal/api"
	"github.com/emigresto/telegram-resto-bot/internal/bot/shared/fsmutil"
	"github.com/emigresto/telegram-resto-bot/internal/ctxutil"
	"github.com/emigresto/telegram-resto-bot/internal/tg"
)

type registerState struct {
	Step   int // 1: email, 2: mot de passe, 3: nom, 4: prénom
	Email  string
	Pass   string
	Nom    string
	Prenom string
}

var registerStates = struct {
	mu sync.Mutex
	m  map[int64]*registerState
}{m: make(map[int64]*registerState)}

func GetRegisterState(chatID int64) *registerState {
	registerStates.mu.Lock()
	defer registerStates.mu.Unlock()
	return registerStates.m[chatID]
}

func setRegisterState(chatID int64, st *registerState) {
	registerStates.mu.Lock()
	defer registerStates.mu.Unlock()
	if st == nil {
		delete(registerStates.m, chatID)
		return
	}
	registerStates.m[chatID] = st
}

func StartRegisterFSM(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	setRegisterState(chatID, &registerState{Step: 1})
	env.reply(chatID, "📧 Email du nouveau compte ? (ou « annuler »)")
}

func HandleRegisterText(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ctx = ctxutil.WithChatID(ctxutil.WithOp(ctx, "register"), chatID)
	st := GetRegisterState(chatID)
	if st == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if fsmutil.IsCancelText(text) {
		setRegisterState(chatID, nil)
		env.reply(chatID, "Inscription annulée.")
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
		env.reply(chatID, "🔑 Choisissez un mot de passe :")
	case 2:
		if len(text) < 8 {
			env.reply(chatID, "⚠️ Huit caractères minimum, réessayez :")
			return
		}
		st.Pass = text
		st.Step = 3
		_, _ = tg.Request(env.Bot, tgbotapi.NewDeleteMessage(chatID, msg.MessageID))
		env.reply(chatID, "Votre nom ?")
	case 3:
		st.Nom = text
		st.Step = 4
		env.reply(chatID, "Votre prénom ?")
	case 4:
		st.Prenom = text
		setRegisterState(chatID, nil)

		cl, err := env.ClientFor(ctx, chatID)
		if err != nil {
			env.replyErr(chatID, err)
			return
		}
		err = cl.Register(ctx, api.RegisterRequest{
			Email:    st.Email,
			Password: st.Pass,
			Nom:      st.Nom,
			Prenom:   st.Prenom,
		})
		if err != nil {
			env.replyErr(chatID, err)
			return
		}
		env.reply(chatID, "✅ Compte créé ! Connectez-vous avec « "+st.Email+" ».")
	}
}
