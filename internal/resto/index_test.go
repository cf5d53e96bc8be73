package resto

import (
	"testing"

	"github.com/emigresto/telegram-resto-bot/internal/models"
)

func TestBuildIndex(t *testing.T) {
	dates := fixedDates(t, "2025-06-04") // mercredi

	resas := []models.Reservation{
		// active, bonne semaine → indexée
		{ID: 1, Date: "2025-06-02", Statut: models.StatutValide,
			Etudiant: 10, ReservantPour: 10, Jour: 1, Periode: 1},
		// annulée → ignorée, même si la date colle
		{ID: 2, Date: "2025-06-03", Statut: models.StatutAnnule,
			Etudiant: 10, ReservantPour: 10, Jour: 2, Periode: 1},
		// semaine précédente → ignorée (historique, pas grille)
		{ID: 3, Date: "2025-05-26", Statut: models.StatutValide,
			Etudiant: 10, ReservantPour: 10, Jour: 1, Periode: 2},
		// réservée par 10 pour 11 → indexée sous le bénéficiaire 11
		{ID: 4, Date: "2025-06-05", Statut: models.StatutValide,
			Etudiant: 10, ReservantPour: 11, Jour: 4, Periode: 1},
		// références absentes → ignorée
		{ID: 5, Date: "2025-06-04", Statut: models.StatutValide,
			Etudiant: 10, ReservantPour: 10, Jour: 0, Periode: 1},
	}

	idx := BuildIndex(resas, dates)

	if !idx.Has(10, 1, 1) {
		t.Fatal("réservation active de la semaine absente de l'index")
	}
	if idx.Has(10, 2, 1) {
		t.Fatal("réservation annulée présente dans l'index")
	}
	if idx.Has(10, 1, 2) {
		t.Fatal("réservation d'une autre semaine présente dans l'index")
	}
	if idx.Has(10, 4, 1) {
		t.Fatal("réservation pour autrui indexée sous l'initiateur")
	}
	if !idx.Has(11, 4, 1) {
		t.Fatal("réservation pour autrui absente chez le bénéficiaire")
	}

	r, ok := idx.Get(10, 1, 1)
	if !ok || r.ID != 1 {
		t.Fatalf("Get(10,1,1): attendu id 1, obtenu %+v (ok=%v)", r, ok)
	}
	if _, ok := idx.Get(99, 1, 1); ok {
		t.Fatal("Get sur un étudiant inconnu devrait échouer")
	}
}

func TestIndexAllChecked(t *testing.T) {
	dates := fixedDates(t, "2025-06-02") // lundi
	jours := []models.Jour{{ID: 1}, {ID: 2}}
	periodes := []models.Periode{{ID: 1}, {ID: 2}}

	var resas []models.Reservation
	id := int64(1)
	for _, j := range jours {
		for _, p := range periodes {
			resas = append(resas, models.Reservation{
				ID: id, Date: dates.ResolveDate(j.ID), Statut: models.StatutValide,
				Etudiant: 10, ReservantPour: 10,
				Jour: models.Ref(j.ID), Periode: models.Ref(p.ID),
			})
			id++
		}
	}

	idx := BuildIndex(resas, dates)
	if !idx.AllChecked(10, jours, periodes) {
		t.Fatal("ligne complète non reconnue comme cochée")
	}

	// on retire une cellule
	idx = BuildIndex(resas[1:], dates)
	if idx.AllChecked(10, jours, periodes) {
		t.Fatal("ligne incomplète reconnue comme cochée")
	}

	if idx.AllChecked(99, jours, periodes) {
		t.Fatal("étudiant sans réservation reconnu comme coché")
	}
}
