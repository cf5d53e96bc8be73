package models

// Jour — donnée de référence statique (1=Lundi .. 7=Dimanche).
// Le serializer ajoute des compteurs agrégés qu'on ignore côté grille.
type Jour struct {
	ID      int64  `json:"id"`
	NomJour string `json:"nomJour"`
}

// Periode — créneau de repas (petit-déjeuner, déjeuner, dîner).
type Periode struct {
	ID         int64  `json:"id"`
	NomPeriode string `json:"nomPeriode"`
}
