package models

import (
	"encoding/json"
	"fmt"
)

type Statut string

const (
	StatutValide Statut = "VALIDE"
	StatutAnnule Statut = "ANNULE"
)

// UnmarshalJSON rejette les statuts inconnus au lieu de les laisser passer:
// un enregistrement mal formé doit échouer bruyamment à la frontière.
func (s *Statut) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch Statut(raw) {
	case StatutValide, StatutAnnule:
		*s = Statut(raw)
		return nil
	default:
		return fmt.Errorf("statut inconnu %q", raw)
	}
}

// Reservation — un repas réservé. L'initiateur (etudiant) peut réserver
// pour un autre étudiant (reservant_pour); le bénéficiaire effectif est
// reservant_pour s'il est renseigné, sinon l'initiateur.
type Reservation struct {
	ID            int64  `json:"id"`
	Date          string `json:"date"`  // YYYY-MM-DD
	Heure         string `json:"heure"` // HH:MM:SS, non significatif
	Statut        Statut `json:"statut"`
	Etudiant      Ref    `json:"etudiant"`
	ReservantPour Ref    `json:"reservant_pour"`
	Jour          Ref    `json:"jour"`
	Periode       Ref    `json:"periode"`
}

func (r Reservation) Beneficiaire() int64 {
	if r.ReservantPour != 0 {
		return r.ReservantPour.Int64()
	}
	return r.Etudiant.Int64()
}

func (r Reservation) Active() bool { return r.Statut == StatutValide }

// CellKey — clé "jour-periode" utilisée par l'index de la grille.
func (r Reservation) CellKey() string {
	return CellKey(r.Jour.Int64(), r.Periode.Int64())
}

func CellKey(jourID, periodeID int64) string {
	return fmt.Sprintf("%d-%d", jourID, periodeID)
}
