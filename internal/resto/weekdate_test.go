package resto

import (
	"testing"
	"time"
)

// fixedDates — résolveur ancré sur une date précise (minuit UTC).
func fixedDates(t *testing.T, anchor string) *DateResolver {
	t.Helper()
	ts, err := time.Parse("2006-01-02", anchor)
	if err != nil {
		t.Fatalf("ancre invalide %q: %v", anchor, err)
	}
	return &DateResolver{
		Now: func() time.Time { return ts },
		Loc: time.UTC,
	}
}

func TestResolveDateSemaineCourante(t *testing.T) {
	// 2025-06-02 est un lundi
	week := []string{
		"2025-06-02", "2025-06-03", "2025-06-04", "2025-06-05",
		"2025-06-06", "2025-06-07", "2025-06-08",
	}

	t.Run("milieu_de_semaine", func(t *testing.T) {
		r := fixedDates(t, "2025-06-04") // mercredi
		for i, want := range week {
			if got := r.ResolveDate(int64(i + 1)); got != want {
				t.Fatalf("jour %d: attendu %s, obtenu %s", i+1, want, got)
			}
		}
	})

	t.Run("lundi", func(t *testing.T) {
		r := fixedDates(t, "2025-06-02")
		for i, want := range week {
			if got := r.ResolveDate(int64(i + 1)); got != want {
				t.Fatalf("jour %d: attendu %s, obtenu %s", i+1, want, got)
			}
		}
	})

	// piège classique: time.Sunday == 0, le dimanche doit rester dans la
	// semaine qui se termine, pas ouvrir la suivante
	t.Run("dimanche", func(t *testing.T) {
		r := fixedDates(t, "2025-06-08")
		for i, want := range week {
			if got := r.ResolveDate(int64(i + 1)); got != want {
				t.Fatalf("jour %d: attendu %s, obtenu %s", i+1, want, got)
			}
		}
	})

	// un jour déjà passé donne une date passée, jamais la semaine suivante
	t.Run("jamais_la_semaine_suivante", func(t *testing.T) {
		r := fixedDates(t, "2025-06-06") // vendredi
		if got := r.ResolveDate(1); got != "2025-06-02" {
			t.Fatalf("lundi passé: attendu 2025-06-02, obtenu %s", got)
		}
	})
}

func TestResolveDateWeekday(t *testing.T) {
	// quel que soit l'ancrage, la date résolue pour jourID tombe sur le
	// bon jour calendaire
	anchors := []string{"2025-06-02", "2025-06-05", "2025-06-08", "2025-12-31", "2026-01-01"}
	for _, a := range anchors {
		r := fixedDates(t, a)
		for id := int64(1); id <= 7; id++ {
			d, err := time.Parse("2006-01-02", r.ResolveDate(id))
			if err != nil {
				t.Fatalf("ancre %s jour %d: %v", a, id, err)
			}
			iso := int64(d.Weekday())
			if iso == 0 {
				iso = 7
			}
			if iso != id {
				t.Fatalf("ancre %s: jour %d résolu sur %s (%s)", a, id, d.Format("2006-01-02"), d.Weekday())
			}
		}
	}
}

func TestIsPast(t *testing.T) {
	r := fixedDates(t, "2025-06-04") // mercredi

	for id := int64(1); id <= 2; id++ {
		if !r.IsPast(id) {
			t.Fatalf("jour %d devrait être passé un mercredi", id)
		}
	}
	for id := int64(3); id <= 7; id++ {
		if r.IsPast(id) {
			t.Fatalf("jour %d ne devrait pas être passé un mercredi", id)
		}
	}

	t.Run("lundi_rien_de_passe", func(t *testing.T) {
		r := fixedDates(t, "2025-06-02")
		for id := int64(1); id <= 7; id++ {
			if r.IsPast(id) {
				t.Fatalf("jour %d passé un lundi", id)
			}
		}
	})
}

func TestToday(t *testing.T) {
	r := fixedDates(t, "2025-06-04")
	if got := r.Today(); got != "2025-06-04" {
		t.Fatalf("attendu 2025-06-04, obtenu %s", got)
	}
}
