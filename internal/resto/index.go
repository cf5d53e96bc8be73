package resto

import "github.com/emigresto/telegram-resto-bot/internal/models"

// Index — vue dérivée de la liste brute: bénéficiaire → "jour-periode" →
// réservation active de la semaine courante. Reconstruit en entier à
// chaque changement de la liste (O(n), n borné par effectif × 7 × nombre
// de périodes), jamais patché incrémentalement.
type Index map[int64]map[string]models.Reservation

// BuildIndex — ne retient que les enregistrements VALIDE dont la date
// correspond exactement à la date résolue pour leur jour dans la semaine
// courante. Les annulées et les autres semaines restent visibles dans la
// liste brute (historique) mais pas ici.
func BuildIndex(reservations []models.Reservation, dates *DateResolver) Index {
	idx := make(Index)
	for _, r := range reservations {
		if !r.Active() {
			continue
		}
		if r.Jour == 0 || r.Periode == 0 || r.Beneficiaire() == 0 {
			continue
		}
		if r.Date != dates.ResolveDate(r.Jour.Int64()) {
			continue
		}
		cells := idx[r.Beneficiaire()]
		if cells == nil {
			cells = make(map[string]models.Reservation)
			idx[r.Beneficiaire()] = cells
		}
		cells[r.CellKey()] = r
	}
	return idx
}

func (ix Index) Get(etudiantID, jourID, periodeID int64) (models.Reservation, bool) {
	r, ok := ix[etudiantID][models.CellKey(jourID, periodeID)]
	return r, ok
}

func (ix Index) Has(etudiantID, jourID, periodeID int64) bool {
	_, ok := ix.Get(etudiantID, jourID, periodeID)
	return ok
}

// AllChecked — vrai si chaque combinaison jour × période de l'étudiant
// est présente dans l'index.
func (ix Index) AllChecked(etudiantID int64, jours []models.Jour, periodes []models.Periode) bool {
	for _, j := range jours {
		for _, p := range periodes {
			if !ix.Has(etudiantID, j.ID, p.ID) {
				return false
			}
		}
	}
	return true
}
