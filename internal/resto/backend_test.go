package resto

import (
	"context"
	"sync"

	"github.com/emigresto/telegram-resto-bot/internal/api"
	"github.com/emigresto/telegram-resto-bot/internal/models"
)

// fakeBackend — Backend en mémoire reproduisant les règles du serveur:
// annulation douce et réactivation d'une réservation annulée à la
// création sur la même clé (bénéficiaire, période, date).
type fakeBackend struct {
	mu        sync.Mutex
	etudiants []models.Etudiant
	jours     []models.Jour
	periodes  []models.Periode
	resas     []models.Reservation
	nextID    int64

	failEtudiants error
	failJours     error
	failPeriodes  error
	failResas     error
	failCreate    error
	failCancel    error

	listResaCalls int
	createCalls   int
	cancelCalls   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nextID: 1,
		etudiants: []models.Etudiant{
			{ID: 10, Nom: "Ngono", Prenom: "Alice", Matricule: "19A001"},
			{ID: 11, Nom: "Mbarga", Prenom: "Paul", Matricule: "19A002"},
		},
		jours: []models.Jour{
			{ID: 1, NomJour: "Lundi"},
			{ID: 2, NomJour: "Mardi"},
			{ID: 3, NomJour: "Mercredi"},
		},
		periodes: []models.Periode{
			{ID: 1, NomPeriode: "Déjeuner"},
			{ID: 2, NomPeriode: "Dîner"},
		},
	}
}

// seed — insère une réservation telle quelle et retourne son id.
func (f *fakeBackend) seed(beneficiaire, jour, periode int64, date string, statut models.Statut) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.resas = append(f.resas, models.Reservation{
		ID:            id,
		Date:          date,
		Heure:         "12:00:00",
		Statut:        statut,
		Etudiant:      models.Ref(beneficiaire),
		ReservantPour: models.Ref(beneficiaire),
		Jour:          models.Ref(jour),
		Periode:       models.Ref(periode),
	})
	return id
}

func (f *fakeBackend) statut(id int64) (models.Statut, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.resas {
		if r.ID == id {
			return r.Statut, true
		}
	}
	return "", false
}

func (f *fakeBackend) Etudiants(ctx context.Context, pageSize int) ([]models.Etudiant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEtudiants != nil {
		return nil, f.failEtudiants
	}
	return append([]models.Etudiant(nil), f.etudiants...), nil
}

func (f *fakeBackend) Jours(ctx context.Context) ([]models.Jour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failJours != nil {
		return nil, f.failJours
	}
	return append([]models.Jour(nil), f.jours...), nil
}

func (f *fakeBackend) Periodes(ctx context.Context) ([]models.Periode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPeriodes != nil {
		return nil, f.failPeriodes
	}
	return append([]models.Periode(nil), f.periodes...), nil
}

func (f *fakeBackend) Reservations(ctx context.Context, _ api.ReservationFilter) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listResaCalls++
	if f.failResas != nil {
		return nil, f.failResas
	}
	return append([]models.Reservation(nil), f.resas...), nil
}

func (f *fakeBackend) CreateReservation(ctx context.Context, in api.ReservationCreate) (models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failCreate != nil {
		return models.Reservation{}, f.failCreate
	}
	// réactivation d'une annulée sur la même clé naturelle
	for i, r := range f.resas {
		if r.Statut == models.StatutAnnule &&
			r.ReservantPour.Int64() == in.ReservantPour &&
			r.Periode.Int64() == in.Periode &&
			r.Date == in.Date {
			f.resas[i].Statut = models.StatutValide
			f.resas[i].Jour = models.Ref(in.Jour)
			return f.resas[i], nil
		}
	}
	id := f.nextID
	f.nextID++
	r := models.Reservation{
		ID:            id,
		Date:          in.Date,
		Heure:         in.Heure,
		Statut:        models.StatutValide,
		Etudiant:      models.Ref(in.ReservantPour),
		ReservantPour: models.Ref(in.ReservantPour),
		Jour:          models.Ref(in.Jour),
		Periode:       models.Ref(in.Periode),
	}
	f.resas = append(f.resas, r)
	return r, nil
}

func (f *fakeBackend) CancelReservation(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	if f.failCancel != nil {
		return f.failCancel
	}
	for i := range f.resas {
		if f.resas[i].ID == id {
			f.resas[i].Statut = models.StatutAnnule
			return nil
		}
	}
	return nil
}
