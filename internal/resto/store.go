package resto

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/emigresto/telegram-resto-bot/internal/api"
	"github.com/emigresto/telegram-resto-bot/internal/models"
)

// Backend — la tranche du client API dont la grille a besoin.
// *api.Client la satisfait; les tests branchent un faux backend.
type Backend interface {
	Etudiants(ctx context.Context, pageSize int) ([]models.Etudiant, error)
	Jours(ctx context.Context) ([]models.Jour, error)
	Periodes(ctx context.Context) ([]models.Periode, error)
	Reservations(ctx context.Context, f api.ReservationFilter) ([]models.Reservation, error)
	CreateReservation(ctx context.Context, in api.ReservationCreate) (models.Reservation, error)
	CancelReservation(ctx context.Context, id int64) error
}

// Store — source de vérité en mémoire d'un écran de grille: collections
// de référence (étudiants, jours, périodes) et liste brute des
// réservations. Une instance par flow monté; rien n'est partagé entre
// chats ni persisté.
type Store struct {
	be               Backend
	studentsPageSize int
	resaPageSize     int

	mu           sync.RWMutex
	etudiants    []models.Etudiant
	jours        []models.Jour
	periodes     []models.Periode
	reservations []models.Reservation
	loaded       bool
}

func NewStore(be Backend, studentsPageSize, reservationsPageSize int) *Store {
	return &Store{
		be:               be,
		studentsPageSize: studentsPageSize,
		resaPageSize:     reservationsPageSize,
	}
}

// Load — charge les quatre collections. Tout ou rien: si un seul appel
// échoue, l'état précédent (ou vide au premier chargement) reste intact
// et l'erreur remonte.
func (s *Store) Load(ctx context.Context) error {
	var (
		wg        sync.WaitGroup
		etudiants []models.Etudiant
		jours     []models.Jour
		periodes  []models.Periode
		resas     []models.Reservation
		errMu     sync.Mutex
		firstErr  error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		var err error
		if etudiants, err = s.be.Etudiants(ctx, s.studentsPageSize); err != nil {
			fail(fmt.Errorf("etudiants: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if jours, err = s.be.Jours(ctx); err != nil {
			fail(fmt.Errorf("jours: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if periodes, err = s.be.Periodes(ctx); err != nil {
			fail(fmt.Errorf("periodes: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if resas, err = s.be.Reservations(ctx, api.ReservationFilter{PageSize: s.resaPageSize}); err != nil {
			fail(fmt.Errorf("reservations: %w", err))
		}
	}()
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	sort.Slice(jours, func(i, j int) bool { return jours[i].ID < jours[j].ID })
	sort.Slice(periodes, func(i, j int) bool { return periodes[i].ID < periodes[j].ID })

	s.mu.Lock()
	s.etudiants = etudiants
	s.jours = jours
	s.periodes = periodes
	s.reservations = resas
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// RefreshReservations — re-lit la seule liste des réservations, en
// entier, et remplace le cache. Appelé après chaque mutation pour que
// l'index reflète l'état confirmé par le serveur et non une supposition
// optimiste.
func (s *Store) RefreshReservations(ctx context.Context) error {
	resas, err := s.be.Reservations(ctx, api.ReservationFilter{PageSize: s.resaPageSize})
	if err != nil {
		return fmt.Errorf("reservations: %w", err)
	}
	s.mu.Lock()
	s.reservations = resas
	s.mu.Unlock()
	return nil
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Les accesseurs rendent les tranches internes; les appelants ne les
// modifient pas.

func (s *Store) Etudiants() []models.Etudiant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.etudiants
}

func (s *Store) Jours() []models.Jour {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jours
}

func (s *Store) Periodes() []models.Periode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.periodes
}

func (s *Store) Reservations() []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reservations
}

// Etudiant — retrouve un étudiant du cache par id.
func (s *Store) Etudiant(id int64) (models.Etudiant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.etudiants {
		if e.ID == id {
			return e, true
		}
	}
	return models.Etudiant{}, false
}
