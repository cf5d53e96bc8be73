package handlers

import (
	"context"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/emigresto/telegram-resto-bot/internal/bot/shared/fsmutil"
	"github.com/emigresto/telegram-resto-bot/internal/ctxutil"
	"github.com/emigresto/telegram-resto-bot/internal/export"
	"github.com/emigresto/telegram-resto-bot/internal/resto"
	"github.com/emigresto/telegram-resto-bot/internal/tg"
)

// HandleGridExport — classeur Excel de la grille courante (filtre de
// recherche compris), envoyé en document.
func HandleGridExport(ctx context.Context, env *Env, chatID int64, st *gridState) {
	if !fsmutil.SetPending(chatID, "grid:export") {
		env.reply(chatID, "⏳ Un export est déjà en cours.")
		return
	}
	defer fsmutil.ClearPending(chatID, "grid:export")
	ctx = ctxutil.WithOp(ctx, "grid:export")

	idx := resto.BuildIndex(st.store.Reservations(), st.dates)
	wb, err := export.NewGridWorkbook(filteredEtudiants(st), st.store.Jours(), st.store.Periodes(), idx)
	if err != nil {
		env.replyErr(chatID, err)
		return
	}
	path, err := wb.SaveTemp()
	if err != nil {
		env.replyErr(chatID, err)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			env.Log.Debug("suppression export temporaire", zap.Error(err))
		}
	}()

	if !stillMounted(chatID, st) {
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = "📤 Réservations de la semaine"
	if _, err := tg.Send(env.Bot, doc); err != nil {
		env.replyErr(chatID, err)
	}
}

// HandleExport — export depuis le menu principal: charge un écran
// éphémère puis délègue au même classeur.
func HandleExport(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ctx = ctxutil.WithChatID(ctx, chatID)

	if st := GetGridState(chatID); st != nil {
		HandleGridExport(ctx, env, chatID, st)
		return
	}

	sess, err := env.Sessions.Get(ctx, chatID)
	if err != nil || !sess.LoggedIn() {
		forceLogin(ctx, env, chatID)
		return
	}
	cl, err := env.ClientFor(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, err)
		return
	}
	dates := resto.NewDateResolver(env.Cfg.Location)
	store := resto.NewStore(cl, env.Cfg.StudentsPageSize, env.Cfg.ReservationsPageSize)
	if err := store.Load(ctx); err != nil {
		env.replyErr(chatID, err)
		return
	}
	tmp := &gridState{client: cl, store: store, dates: dates}
	setGridState(chatID, tmp)
	defer dropGridState(chatID)
	HandleGridExport(ctx, env, chatID, tmp)
}
