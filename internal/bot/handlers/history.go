package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/emigresto/telegram-resto-bot/internal/api"
	"github.com/emigresto/telegram-resto-bot/internal/ctxutil"
	"github.com/emigresto/telegram-resto-bot/internal/models"
)

// HandleGridHistory — historique de l'étudiant sélectionné, construit sur
// la liste brute du Store: les annulées et les autres semaines y figurent,
// contrairement à l'index.
func HandleGridHistory(ctx context.Context, env *Env, chatID int64, st *gridState) {
	if st.student == 0 {
		return
	}
	etu, _ := st.store.Etudiant(st.student)
	periodes := st.store.Periodes()

	var own []models.Reservation
	for _, r := range st.store.Reservations() {
		if r.Beneficiaire() == st.student {
			own = append(own, r)
		}
	}
	sort.Slice(own, func(i, j int) bool { return own[i].Date > own[j].Date })
	if len(own) > 15 {
		own = own[:15]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🗓 Historique — %s\n", etu.DisplayName())
	if len(own) == 0 {
		b.WriteString("Aucune réservation enregistrée.")
	}
	for _, r := range own {
		b.WriteString(historyLine(r, periodes))
	}
	env.reply(chatID, b.String())
}

// HandleHistory — vue guichet: les réservations des 7 derniers jours,
// toutes lignes confondues (filtre de dates côté serveur).
func HandleHistory(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ctx = ctxutil.WithChatID(ctxutil.WithOp(ctx, "history"), chatID)

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

	now := time.Now().In(env.Cfg.Location)
	from := now.AddDate(0, 0, -7).Format("2006-01-02")
	ctx, cancel := ctxutil.WithAPITimeout(ctx)
	defer cancel()
	resas, err := cl.Reservations(ctx, api.ReservationFilter{
		PageSize: env.Cfg.ReservationsPageSize,
		DateFrom: from,
	})
	if err != nil {
		if errors.Is(err, api.ErrSessionExpiree) {
			forceLogin(ctx, env, chatID)
			return
		}
		env.replyErr(chatID, err)
		return
	}

	valides, annulees := 0, 0
	for _, r := range resas {
		if r.Active() {
			valides++
		} else {
			annulees++
		}
	}
	sort.Slice(resas, func(i, j int) bool { return resas[i].Date > resas[j].Date })
	if len(resas) > 20 {
		resas = resas[:20]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🗓 Réservations depuis le %s\n✅ %d valides · ❌ %d annulées\n\n", from, valides, annulees)
	if len(resas) == 0 {
		b.WriteString("Aucune réservation sur la période.")
	}
	for _, r := range resas {
		b.WriteString(historyLine(r, nil))
	}
	env.reply(chatID, b.String())
}

func historyLine(r models.Reservation, periodes []models.Periode) string {
	statut := "✅"
	if !r.Active() {
		statut = "❌"
	}
	periode := fmt.Sprintf("période %d", r.Periode.Int64())
	for _, p := range periodes {
		if p.ID == r.Periode.Int64() {
			periode = p.NomPeriode
			break
		}
	}
	return fmt.Sprintf("%s %s — %s (bénéf. %d)\n", statut, r.Date, periode, r.Beneficiaire())
}
