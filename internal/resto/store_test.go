package resto

import (
	"context"
	"errors"
	"testing"

	"github.com/emigresto/telegram-resto-bot/internal/models"
)

func TestStoreLoadToutOuRien(t *testing.T) {
	be := newFakeBackend()
	store := NewStore(be, 500, 1000)
	ctx := context.Background()

	boom := errors.New("timeout")
	be.mu.Lock()
	be.failPeriodes = boom
	be.mu.Unlock()

	if err := store.Load(ctx); !errors.Is(err, boom) {
		t.Fatalf("attendu l'erreur périodes, obtenu %v", err)
	}
	if store.Loaded() {
		t.Fatal("store marqué chargé après un échec")
	}
	if len(store.Etudiants()) != 0 || len(store.Jours()) != 0 {
		t.Fatal("collections partiellement remplies après un échec")
	}

	be.mu.Lock()
	be.failPeriodes = nil
	be.mu.Unlock()
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !store.Loaded() {
		t.Fatal("store non marqué chargé")
	}
	avant := store.Etudiants()

	// nouvel échec → l'état précédent reste servi tel quel
	be.mu.Lock()
	be.failEtudiants = boom
	be.mu.Unlock()
	if err := store.Load(ctx); !errors.Is(err, boom) {
		t.Fatalf("attendu l'erreur étudiants, obtenu %v", err)
	}
	if len(store.Etudiants()) != len(avant) {
		t.Fatal("état écrasé par un chargement raté")
	}
	if !store.Loaded() {
		t.Fatal("store démarqué après un rechargement raté")
	}
}

func TestStoreLoadTrieLesCollections(t *testing.T) {
	be := newFakeBackend()
	be.mu.Lock()
	be.jours = []models.Jour{{ID: 3, NomJour: "Mercredi"}, {ID: 1, NomJour: "Lundi"}, {ID: 2, NomJour: "Mardi"}}
	be.periodes = []models.Periode{{ID: 2, NomPeriode: "Dîner"}, {ID: 1, NomPeriode: "Déjeuner"}}
	be.mu.Unlock()

	store := NewStore(be, 500, 1000)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	for i, j := range store.Jours() {
		if j.ID != int64(i+1) {
			t.Fatalf("jours non triés: %+v", store.Jours())
		}
	}
	for i, p := range store.Periodes() {
		if p.ID != int64(i+1) {
			t.Fatalf("périodes non triées: %+v", store.Periodes())
		}
	}
}

func TestStoreRefreshReservations(t *testing.T) {
	be := newFakeBackend()
	store := NewStore(be, 500, 1000)
	ctx := context.Background()
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(store.Reservations()) != 0 {
		t.Fatal("liste non vide au départ")
	}

	be.seed(10, 1, 1, "2025-06-02", models.StatutValide)
	if err := store.RefreshReservations(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(store.Reservations()) != 1 {
		t.Fatalf("liste non rafraîchie: %d", len(store.Reservations()))
	}

	// échec de relecture → on garde la dernière liste connue
	boom := errors.New("réseau")
	be.mu.Lock()
	be.failResas = boom
	be.mu.Unlock()
	if err := store.RefreshReservations(ctx); !errors.Is(err, boom) {
		t.Fatalf("attendu l'erreur réseau, obtenu %v", err)
	}
	if len(store.Reservations()) != 1 {
		t.Fatal("liste perdue après un refresh raté")
	}
}

func TestStoreEtudiant(t *testing.T) {
	be := newFakeBackend()
	store := NewStore(be, 500, 1000)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	e, ok := store.Etudiant(10)
	if !ok || e.Nom != "Ngono" {
		t.Fatalf("Etudiant(10): %+v (ok=%v)", e, ok)
	}
	if _, ok := store.Etudiant(99); ok {
		t.Fatal("étudiant fantôme trouvé")
	}
}
