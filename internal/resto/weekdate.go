package resto

import "time"

// DateResolver — résolution des dates de la semaine courante. L'ancre
// ("aujourd'hui") est injectable pour que les tests ne dépendent pas de
// l'horloge murale.
type DateResolver struct {
	Now func() time.Time
	Loc *time.Location
}

func NewDateResolver(loc *time.Location) *DateResolver {
	if loc == nil {
		loc = time.Local
	}
	return &DateResolver{Now: time.Now, Loc: loc}
}

// ResolveDate — date calendaire du jour jourID (1=Lundi .. 7=Dimanche)
// dans la semaine qui contient "aujourd'hui", au format YYYY-MM-DD.
// Toujours ancré au lundi de la semaine courante: un jourID déjà passé
// donne une date passée, jamais celle de la semaine suivante.
func (r *DateResolver) ResolveDate(jourID int64) string {
	t := r.today()
	iso := int(t.Weekday())
	if iso == 0 { // time.Sunday == 0, convention ISO: dimanche = 7
		iso = 7
	}
	monday := t.AddDate(0, 0, -(iso - 1))
	return monday.AddDate(0, 0, int(jourID-1)).Format("2006-01-02")
}

// Today — la date d'aujourd'hui au format YYYY-MM-DD.
func (r *DateResolver) Today() string {
	return r.today().Format("2006-01-02")
}

// IsPast — vrai si la date résolue pour jourID est strictement avant
// aujourd'hui. Les cellules passées de la grille sont immuables.
func (r *DateResolver) IsPast(jourID int64) bool {
	return r.ResolveDate(jourID) < r.Today()
}

func (r *DateResolver) today() time.Time {
	t := r.Now().In(r.Loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.Loc)
}
