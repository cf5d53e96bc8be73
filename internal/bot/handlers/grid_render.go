package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/emigresto/telegram-resto-bot/internal/models"
	"github.com/emigresto/telegram-resto-bot/internal/resto"
)

const rosterPageSize = 7 // comme la grille web d'origine

// --- vue liste des étudiants ---

func rosterView(st *gridState) (string, tgbotapi.InlineKeyboardMarkup) {
	all := filteredEtudiants(st)
	pages := (len(all) + rosterPageSize - 1) / rosterPageSize
	if pages == 0 {
		pages = 1
	}
	if st.page >= pages {
		st.page = pages - 1
	}
	if st.page < 0 {
		st.page = 0
	}
	from := st.page * rosterPageSize
	to := from + rosterPageSize
	if to > len(all) {
		to = len(all)
	}

	var b strings.Builder
	b.WriteString("👥 Réservations de la semaine\n")
	if st.search != "" {
		fmt.Fprintf(&b, "Filtre : « %s » (%d résultat(s)) — envoyez « * » pour effacer\n", st.search, len(all))
	} else {
		b.WriteString("Choisissez un étudiant. Envoyez un nom ou un matricule pour filtrer.\n")
	}

	idx := resto.BuildIndex(st.store.Reservations(), st.dates)
	nCells := len(st.store.Jours()) * len(st.store.Periodes())

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, e := range all[from:to] {
		label := fmt.Sprintf("%s (%s) — %d/%d", e.DisplayName(), e.Matricule, len(idx[e.ID]), nCells)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("grid_st_%d", e.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️", "grid_prev"),
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", st.page+1, pages), "grid_noop"),
		tgbotapi.NewInlineKeyboardButtonData("➡️", "grid_next"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Recharger", "grid_reload"),
		tgbotapi.NewInlineKeyboardButtonData("📤 Export", "grid_export"),
		tgbotapi.NewInlineKeyboardButtonData("❌ Fermer", "grid_close"),
	))
	return b.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func filteredEtudiants(st *gridState) []models.Etudiant {
	all := st.store.Etudiants()
	if st.search == "" {
		return all
	}
	out := make([]models.Etudiant, 0, len(all))
	for _, e := range all {
		if e.Matches(st.search) {
			out = append(out, e)
		}
	}
	return out
}

// --- vue grille d'un étudiant ---

func gridView(st *gridState) (string, tgbotapi.InlineKeyboardMarkup) {
	etu, _ := st.store.Etudiant(st.student)
	idx := resto.BuildIndex(st.store.Reservations(), st.dates)
	jours := st.store.Jours()
	periodes := st.store.Periodes()

	var b strings.Builder
	fmt.Fprintf(&b, "🍽 %s — semaine du %s\n", etu.DisplayName(), st.dates.ResolveDate(1))
	fmt.Fprintf(&b, "💰 Solde : %.0f FCFA · quota %d ticket(s)\n", etu.Solde, etu.TicketQuota)
	b.WriteString("Colonnes : ")
	for i, p := range periodes {
		if i > 0 {
			b.WriteString(" · ")
		}
		b.WriteString(p.NomPeriode)
	}
	b.WriteString("\n✅ réservé · ⬜ libre · 🔒 jour passé")

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, j := range jours {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(dayLabel(j, st), "grid_noop"),
		}
		past := st.dates.IsPast(j.ID)
		for _, p := range periodes {
			var face string
			switch {
			case past:
				face = "🔒"
			case idx.Has(st.student, j.ID, p.ID):
				face = "✅"
			default:
				face = "⬜"
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				face, fmt.Sprintf("grid_cell_%d_%d", j.ID, p.ID)))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔁 Basculer la ligne", "grid_row"),
		tgbotapi.NewInlineKeyboardButtonData("🗓 Historique", "grid_hist"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Liste", "grid_back"),
	))
	return b.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func dayLabel(j models.Jour, st *gridState) string {
	name := j.NomJour
	if len([]rune(name)) > 3 {
		name = string([]rune(name)[:3])
	}
	date := st.dates.ResolveDate(j.ID)
	if len(date) == 10 {
		date = date[8:] + "/" + date[5:7] // JJ/MM
	}
	return name + " " + date
}
