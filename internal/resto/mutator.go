package resto

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/emigresto/telegram-resto-bot/internal/api"
	"github.com/emigresto/telegram-resto-bot/internal/metrics"
)

// Heure par défaut d'une réservation; le backend ne s'en sert pas.
const defaultHeure = "12:00:00"

type ToggleAction string

const (
	ActionCreated   ToggleAction = "create"
	ActionCancelled ToggleAction = "cancel"
)

// Mutator — porte les deux opérations de la grille. Ne garde aucun état:
// il relit l'index depuis le Store à chaque appel et laisse le serveur
// arbitrer (réactivation d'une annulée comprise).
type Mutator struct {
	be    Backend
	store *Store
	dates *DateResolver
	log   *zap.Logger
}

func NewMutator(be Backend, store *Store, dates *DateResolver, log *zap.Logger) *Mutator {
	return &Mutator{be: be, store: store, dates: dates, log: log}
}

// ToggleCell — bascule une cellule. Réservation active présente →
// annulation douce (PATCH statut=ANNULE, jamais de DELETE); absente →
// création datée via le résolveur. Dans les deux cas la liste des
// réservations est rechargée après succès; en cas d'échec l'état local
// ne bouge pas et l'erreur remonte telle quelle.
func (m *Mutator) ToggleCell(ctx context.Context, beneficiaireID, jourID, periodeID int64) (ToggleAction, error) {
	idx := BuildIndex(m.store.Reservations(), m.dates)

	var action ToggleAction
	if existing, ok := idx.Get(beneficiaireID, jourID, periodeID); ok {
		if err := m.be.CancelReservation(ctx, existing.ID); err != nil {
			return "", err
		}
		action = ActionCancelled
	} else {
		_, err := m.be.CreateReservation(ctx, api.ReservationCreate{
			ReservantPour: beneficiaireID,
			Jour:          jourID,
			Periode:       periodeID,
			Date:          m.dates.ResolveDate(jourID),
			Heure:         defaultHeure,
		})
		if err != nil {
			return "", err
		}
		action = ActionCreated
	}
	metrics.ReservationToggles.WithLabelValues(string(action)).Inc()

	if err := m.store.RefreshReservations(ctx); err != nil {
		// la mutation a été acceptée; seul le rechargement a échoué
		m.log.Warn("refresh après mutation échoué", zap.Error(err))
		return action, err
	}
	return action, nil
}

// BulkResult — bilan d'un basculement de ligne.
type BulkResult struct {
	Created   int
	Cancelled int
	Skipped   int // cellules passées, intouchables
}

// ToggleAllForStudent — bascule toute la ligne d'un étudiant. Si toutes
// les cellules sont cochées on annule tout, sinon on complète les
// manquantes; les jours déjà passés sont ignorés. Les requêtes partent
// en parallèle et la liste n'est rechargée qu'une fois après le point de
// jonction — jamais ToggleCell en boucle, qui rechargerait après chaque
// cellule.
func (m *Mutator) ToggleAllForStudent(ctx context.Context, beneficiaireID int64) (BulkResult, error) {
	jours := m.store.Jours()
	periodes := m.store.Periodes()
	idx := BuildIndex(m.store.Reservations(), m.dates)
	allChecked := idx.AllChecked(beneficiaireID, jours, periodes)

	var res BulkResult
	var calls []func(context.Context) error
	for _, j := range jours {
		if m.dates.IsPast(j.ID) {
			res.Skipped += len(periodes)
			continue
		}
		date := m.dates.ResolveDate(j.ID)
		for _, p := range periodes {
			existing, ok := idx.Get(beneficiaireID, j.ID, p.ID)
			switch {
			case allChecked && ok:
				id := existing.ID
				calls = append(calls, func(ctx context.Context) error {
					return m.be.CancelReservation(ctx, id)
				})
				res.Cancelled++
			case !allChecked && !ok:
				in := api.ReservationCreate{
					ReservantPour: beneficiaireID,
					Jour:          j.ID,
					Periode:       p.ID,
					Date:          date,
					Heure:         defaultHeure,
				}
				calls = append(calls, func(ctx context.Context) error {
					_, err := m.be.CreateReservation(ctx, in)
					return err
				})
				res.Created++
			}
		}
	}
	if len(calls) == 0 {
		return res, nil
	}

	errs := make([]error, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call func(context.Context) error) {
			defer wg.Done()
			errs[i] = call(ctx)
		}(i, call)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return res, err
	}

	action := ActionCreated
	if allChecked {
		action = ActionCancelled
	}
	metrics.ReservationToggles.WithLabelValues(string(action)).Add(float64(len(calls)))

	if err := m.store.RefreshReservations(ctx); err != nil {
		m.log.Warn("refresh après basculement de ligne échoué", zap.Error(err))
		return res, err
	}
	return res, nil
}
