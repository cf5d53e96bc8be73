package handlers

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/emigresto/telegram-resto-bot/internal/api"
	"github.com/emigresto/telegram-resto-bot/internal/models"
	"github.com/emigresto/telegram-resto-bot/internal/resto"
)

// stubBackend — juste de quoi charger un Store pour les vues.
type stubBackend struct {
	etudiants []models.Etudiant
	jours     []models.Jour
	periodes  []models.Periode
	resas     []models.Reservation
}

func (s *stubBackend) Etudiants(context.Context, int) ([]models.Etudiant, error) {
	return s.etudiants, nil
}
func (s *stubBackend) Jours(context.Context) ([]models.Jour, error)       { return s.jours, nil }
func (s *stubBackend) Periodes(context.Context) ([]models.Periode, error) { return s.periodes, nil }
func (s *stubBackend) Reservations(context.Context, api.ReservationFilter) ([]models.Reservation, error) {
	return s.resas, nil
}
func (s *stubBackend) CreateReservation(context.Context, api.ReservationCreate) (models.Reservation, error) {
	return models.Reservation{}, nil
}
func (s *stubBackend) CancelReservation(context.Context, int64) error { return nil }

func newViewState(t *testing.T, anchor string, be *stubBackend) *gridState {
	t.Helper()
	ts, err := time.Parse("2006-01-02", anchor)
	if err != nil {
		t.Fatalf("ancre %q: %v", anchor, err)
	}
	dates := &resto.DateResolver{Now: func() time.Time { return ts }, Loc: time.UTC}
	store := resto.NewStore(be, 500, 1000)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return &gridState{store: store, dates: dates}
}

func TestRosterView(t *testing.T) {
	be := &stubBackend{
		jours:    []models.Jour{{ID: 1, NomJour: "Lundi"}},
		periodes: []models.Periode{{ID: 1, NomPeriode: "Déjeuner"}},
	}
	for i := int64(1); i <= 10; i++ {
		be.etudiants = append(be.etudiants, models.Etudiant{
			ID: i, Nom: "Etu", Prenom: string(rune('A' + i - 1)),
			Matricule: fmt.Sprintf("M%02d", i),
		})
	}
	st := newViewState(t, "2025-06-02", be)

	_, kb := rosterView(st)
	// 7 étudiants par page + navigation + actions
	if got := len(kb.InlineKeyboard); got != rosterPageSize+2 {
		t.Fatalf("rangées page 1: %d", got)
	}

	st.page = 1
	_, kb = rosterView(st)
	if got := len(kb.InlineKeyboard); got != 3+2 {
		t.Fatalf("rangées page 2: %d", got)
	}

	// page hors bornes → ramenée à la dernière
	st.page = 99
	text, _ := rosterView(st)
	if st.page != 1 {
		t.Fatalf("page non bornée: %d", st.page)
	}
	if !strings.Contains(text, "Réservations de la semaine") {
		t.Fatalf("en-tête absent: %q", text)
	}

	st.search = "m03"
	st.page = 0
	text, kb = rosterView(st)
	if !strings.Contains(text, "1 résultat") {
		t.Fatalf("filtre non annoncé: %q", text)
	}
	if got := len(kb.InlineKeyboard); got != 1+2 {
		t.Fatalf("rangées filtrées: %d", got)
	}
}

func TestGridView(t *testing.T) {
	be := &stubBackend{
		etudiants: []models.Etudiant{{ID: 10, Nom: "Ngono", Prenom: "Alice", Solde: 2500, TicketQuota: 3}},
		jours: []models.Jour{
			{ID: 1, NomJour: "Lundi"}, {ID: 2, NomJour: "Mardi"}, {ID: 3, NomJour: "Mercredi"},
		},
		periodes: []models.Periode{{ID: 1, NomPeriode: "Déjeuner"}, {ID: 2, NomPeriode: "Dîner"}},
		resas: []models.Reservation{
			{ID: 1, Date: "2025-06-04", Statut: models.StatutValide,
				Etudiant: 10, ReservantPour: 10, Jour: 3, Periode: 1},
		},
	}
	st := newViewState(t, "2025-06-04", be) // mercredi
	st.student = 10

	text, kb := gridView(st)
	if !strings.Contains(text, "Ngono Alice") || !strings.Contains(text, "semaine du 2025-06-02") {
		t.Fatalf("en-tête: %q", text)
	}
	if !strings.Contains(text, "Solde : 2500 FCFA") {
		t.Fatalf("solde absent de l'en-tête: %q", text)
	}

	// une rangée par jour + deux rangées d'actions
	if got := len(kb.InlineKeyboard); got != 3+2 {
		t.Fatalf("rangées: %d", got)
	}
	face := func(row, col int) string { return kb.InlineKeyboard[row][col].Text }

	// lundi et mardi passés → verrouillés
	if face(0, 1) != "🔒" || face(1, 1) != "🔒" {
		t.Fatalf("jours passés non verrouillés: %q %q", face(0, 1), face(1, 1))
	}
	// mercredi: déjeuner réservé, dîner libre
	if face(2, 1) != "✅" {
		t.Fatalf("cellule réservée: %q", face(2, 1))
	}
	if face(2, 2) != "⬜" {
		t.Fatalf("cellule libre: %q", face(2, 2))
	}
	if data := kb.InlineKeyboard[2][1].CallbackData; data == nil || *data != "grid_cell_3_1" {
		t.Fatalf("callback cellule: %v", data)
	}
}

func TestDayLabel(t *testing.T) {
	be := &stubBackend{
		jours:    []models.Jour{{ID: 3, NomJour: "Mercredi"}},
		periodes: []models.Periode{{ID: 1, NomPeriode: "Déjeuner"}},
	}
	st := newViewState(t, "2025-06-04", be)

	if got := dayLabel(models.Jour{ID: 3, NomJour: "Mercredi"}, st); got != "Mer 04/06" {
		t.Fatalf("libellé: %q", got)
	}
	if got := dayLabel(models.Jour{ID: 1, NomJour: "Lun"}, st); got != "Lun 02/06" {
		t.Fatalf("libellé court: %q", got)
	}
}
