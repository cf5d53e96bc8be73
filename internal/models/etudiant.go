package models

import (
	"strconv"
	"strings"
)

// Etudiant — copie lecture seule côté client; le solde et le quota de
// tickets sont calculés par le serveur.
type Etudiant struct {
	ID          int64   `json:"id"`
	Matricule   string  `json:"matricule"`
	Nom         string  `json:"nom"`
	Prenom      string  `json:"prenom"`
	Email       string  `json:"email"`
	Telephone   string  `json:"telephone"`
	Sexe        string  `json:"sexe"`
	Solde       float64 `json:"solde"` // FCFA
	TicketQuota int     `json:"ticket_quota"`
	FullName    string  `json:"full_name"`
}

func (e Etudiant) DisplayName() string {
	if e.FullName != "" {
		return e.FullName
	}
	return strings.TrimSpace(e.Nom + " " + e.Prenom)
}

// Matches — filtre de recherche du guichet: nom, prénom, id ou matricule.
func (e Etudiant) Matches(term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Nom), t) ||
		strings.Contains(strings.ToLower(e.Prenom), t) ||
		strings.Contains(strconv.FormatInt(e.ID, 10), t) ||
		strings.Contains(strings.ToLower(e.Matricule), t)
}
