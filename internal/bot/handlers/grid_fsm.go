package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/emigresto/telegram-resto-bot/internal/api"
	"github.com/emigresto/telegram-resto-bot/internal/bot/shared/fsmutil"
	"github.com/emigresto/telegram-resto-bot/internal/ctxutil"
	"github.com/emigresto/telegram-resto-bot/internal/metrics"
	"github.com/emigresto/telegram-resto-bot/internal/resto"
	"github.com/emigresto/telegram-resto-bot/internal/tg"
)

// gridState — un écran de grille monté pour un chat. Le Store est la
// source de vérité de cet écran uniquement; il meurt avec lui.
type gridState struct {
	client  *api.Client
	store   *resto.Store
	mutator *resto.Mutator
	dates   *resto.DateResolver

	page    int
	search  string
	student int64 // 0 = liste
	msgID   int
}

var gridStates = struct {
	mu sync.Mutex
	m  map[int64]*gridState
}{m: make(map[int64]*gridState)}

func GetGridState(chatID int64) *gridState {
	gridStates.mu.Lock()
	defer gridStates.mu.Unlock()
	return gridStates.m[chatID]
}

func setGridState(chatID int64, st *gridState) {
	gridStates.mu.Lock()
	defer gridStates.mu.Unlock()
	gridStates.m[chatID] = st
}

func dropGridState(chatID int64) {
	gridStates.mu.Lock()
	defer gridStates.mu.Unlock()
	delete(gridStates.m, chatID)
}

// stillMounted — garde anti-écriture tardive: un résultat réseau arrivé
// après le démontage de l'écran est jeté, pas rendu.
func stillMounted(chatID int64, st *gridState) bool {
	gridStates.mu.Lock()
	defer gridStates.mu.Unlock()
	return gridStates.m[chatID] == st
}

// --- démarrage ---

func StartGridFSM(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ctx = ctxutil.WithChatID(ctxutil.WithOp(ctx, "grid:load"), chatID)

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
	st := &gridState{
		client:  cl,
		store:   store,
		mutator: resto.NewMutator(cl, store, dates, env.Log),
		dates:   dates,
	}

	loading, _ := tg.Send(env.Bot, tgbotapi.NewMessage(chatID, "⏳ Chargement des réservations…"))
	st.msgID = loading.MessageID

	loadCtx, cancel := ctxutil.WithAPITimeout(ctx)
	defer cancel()
	if err := store.Load(loadCtx); err != nil {
		if errors.Is(err, api.ErrSessionExpiree) {
			forceLogin(ctx, env, chatID)
			return
		}
		edit := tgbotapi.NewEditMessageText(chatID, st.msgID, "❌ Chargement impossible : "+api.UserMessage(err))
		_, _ = tg.Send(env.Bot, edit)
		return
	}
	setGridState(chatID, st)
	renderGrid(env, chatID, st)
}

func renderGrid(env *Env, chatID int64, st *gridState) {
	if !stillMounted(chatID, st) {
		return
	}
	var (
		text string
		kb   tgbotapi.InlineKeyboardMarkup
	)
	if st.student == 0 {
		text, kb = rosterView(st)
	} else {
		text, kb = gridView(st)
	}
	edit := tgbotapi.NewEditMessageText(chatID, st.msgID, text)
	edit.ReplyMarkup = &kb
	if _, err := tg.Send(env.Bot, edit); err != nil {
		// "message is not modified" quand rien n'a changé: sans gravité
		env.Log.Debug("édition grille", zap.Error(err))
	}
}

// --- texte libre: filtre de recherche ---

func HandleGridText(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st := GetGridState(chatID)
	if st == nil || st.student != 0 {
		return
	}
	term := strings.TrimSpace(msg.Text)
	if term == "*" {
		term = ""
	}
	st.search = term
	st.page = 0
	renderGrid(env, chatID, st)
}

// --- callbacks ---

func HandleGridCallback(ctx context.Context, env *Env, cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	ctx = ctxutil.WithChatID(ctx, chatID)
	st := GetGridState(chatID)
	if st == nil {
		answer(env, cq.ID, "Grille fermée, relancez 🍽 Réservations")
		return
	}
	data := cq.Data

	switch {
	case data == "grid_noop":
		answer(env, cq.ID, "")

	case data == "grid_prev":
		st.page--
		renderGrid(env, chatID, st)
		answer(env, cq.ID, "")

	case data == "grid_next":
		st.page++
		renderGrid(env, chatID, st)
		answer(env, cq.ID, "")

	case data == "grid_close":
		dropGridState(chatID)
		edit := tgbotapi.NewEditMessageText(chatID, st.msgID, "Grille fermée.")
		_, _ = tg.Send(env.Bot, edit)
		answer(env, cq.ID, "")

	case data == "grid_back":
		st.student = 0
		renderGrid(env, chatID, st)
		answer(env, cq.ID, "")

	case data == "grid_reload":
		reloadGrid(ctx, env, chatID, st, cq.ID)

	case data == "grid_export":
		answer(env, cq.ID, "Export en cours…")
		HandleGridExport(ctx, env, chatID, st)

	case data == "grid_hist":
		answer(env, cq.ID, "")
		HandleGridHistory(ctx, env, chatID, st)

	case strings.HasPrefix(data, "grid_st_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "grid_st_"), 10, 64)
		if err != nil {
			answer(env, cq.ID, "")
			return
		}
		st.student = id
		renderGrid(env, chatID, st)
		answer(env, cq.ID, "")

	case strings.HasPrefix(data, "grid_cell_"):
		toggleCellCallback(ctx, env, chatID, st, cq)

	case data == "grid_row":
		toggleRowCallback(ctx, env, chatID, st, cq)
	}
}

func reloadGrid(ctx context.Context, env *Env, chatID int64, st *gridState, cqID string) {
	ctx = ctxutil.WithOp(ctx, "grid:reload")
	ctx, cancel := ctxutil.WithAPITimeout(ctx)
	defer cancel()
	if err := st.store.Load(ctx); err != nil {
		if errors.Is(err, api.ErrSessionExpiree) {
			forceLogin(ctx, env, chatID)
			return
		}
		answer(env, cqID, "❌ "+api.UserMessage(err))
		return
	}
	renderGrid(env, chatID, st)
	answer(env, cqID, "Données rechargées")
}

// toggleCellCallback — bascule une cellule. Contrôle désactivé pendant la
// requête (pending), état revalidé après le round trip: l'UI ne proclame
// rien avant confirmation serveur.
func toggleCellCallback(ctx context.Context, env *Env, chatID int64, st *gridState, cq *tgbotapi.CallbackQuery) {
	parts := strings.Split(strings.TrimPrefix(cq.Data, "grid_cell_"), "_")
	if len(parts) != 2 || st.student == 0 {
		answer(env, cq.ID, "")
		return
	}
	jourID, err1 := strconv.ParseInt(parts[0], 10, 64)
	periodeID, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		answer(env, cq.ID, "")
		return
	}
	if st.dates.IsPast(jourID) {
		answer(env, cq.ID, "🔒 Jour passé, cellule immuable")
		return
	}
	if !fsmutil.SetPending(chatID, "grid:toggle") {
		answer(env, cq.ID, "⏳ Action déjà en cours")
		return
	}
	defer fsmutil.ClearPending(chatID, "grid:toggle")
	ctx = ctxutil.WithOp(ctx, "grid:toggle")

	action, err := st.mutator.ToggleCell(ctx, st.student, jourID, periodeID)
	if !stillMounted(chatID, st) {
		return
	}
	if err != nil {
		metrics.HandlerErrors.Inc()
		if errors.Is(err, api.ErrSessionExpiree) {
			forceLogin(ctx, env, chatID)
			return
		}
		answer(env, cq.ID, "❌ "+api.UserMessage(err))
		return
	}
	renderGrid(env, chatID, st)
	if action == resto.ActionCancelled {
		answer(env, cq.ID, "Réservation annulée !")
	} else {
		answer(env, cq.ID, "Réservation effectuée !")
	}
}

func toggleRowCallback(ctx context.Context, env *Env, chatID int64, st *gridState, cq *tgbotapi.CallbackQuery) {
	if st.student == 0 {
		answer(env, cq.ID, "")
		return
	}
	if !fsmutil.SetPending(chatID, "grid:toggle") {
		answer(env, cq.ID, "⏳ Action déjà en cours")
		return
	}
	defer fsmutil.ClearPending(chatID, "grid:toggle")
	ctx = ctxutil.WithOp(ctx, "grid:row")

	res, err := st.mutator.ToggleAllForStudent(ctx, st.student)
	if !stillMounted(chatID, st) {
		return
	}
	if err != nil {
		metrics.HandlerErrors.Inc()
		if errors.Is(err, api.ErrSessionExpiree) {
			forceLogin(ctx, env, chatID)
			return
		}
		answer(env, cq.ID, "❌ "+api.UserMessage(err))
		return
	}
	renderGrid(env, chatID, st)
	switch {
	case res.Cancelled > 0:
		answer(env, cq.ID, "Ligne annulée ("+strconv.Itoa(res.Cancelled)+" repas)")
	case res.Created > 0:
		answer(env, cq.ID, "Ligne réservée ("+strconv.Itoa(res.Created)+" repas)")
	default:
		answer(env, cq.ID, "Rien à faire (jours passés)")
	}
}

func answer(env *Env, cqID, text string) {
	cb := tgbotapi.NewCallback(cqID, text)
	if _, err := tg.Request(env.Bot, cb); err != nil {
		metrics.HandlerErrors.Inc()
	}
}
