// Package apitest — faux backend EmiGResto en mémoire pour les tests:
// mêmes chemins, même enveloppe de pagination, mêmes formes de réponse
// (références tantôt imbriquées, tantôt id nu) que le vrai serveur.
package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/emigresto/telegram-resto-bot/internal/models"
)

type Server struct {
	HTTP *httptest.Server

	mu           sync.Mutex
	etudiants    []models.Etudiant
	jours        []models.Jour
	periodes     []models.Periode
	reservations []reservation
	nextID       int64

	validAccess string
	refresh     string

	// pannes simulées
	failPaths map[string]bool

	// compteurs
	createCalls  int
	patchCalls   int
	refreshCalls int
}

// reservation — représentation serveur; le rendu JSON mélange les formes
// comme le vrai backend (etudiant/jour/periode imbriqués, reservant_pour
// en id nu).
type reservation struct {
	ID            int64
	Date          string
	Heure         string
	Statut        models.Statut
	Etudiant      int64
	ReservantPour int64
	Jour          int64
	Periode       int64
}

func New() *Server {
	s := &Server{
		nextID:      1,
		validAccess: "access-1",
		refresh:     "refresh-1",
		failPaths:   make(map[string]bool),
		jours: []models.Jour{
			{ID: 1, NomJour: "Lundi"}, {ID: 2, NomJour: "Mardi"},
			{ID: 3, NomJour: "Mercredi"}, {ID: 4, NomJour: "Jeudi"},
			{ID: 5, NomJour: "Vendredi"}, {ID: 6, NomJour: "Samedi"},
			{ID: 7, NomJour: "Dimanche"},
		},
		periodes: []models.Periode{
			{ID: 1, NomPeriode: "Petit-Déjeuner"},
			{ID: 2, NomPeriode: "Déjeuner"},
			{ID: 3, NomPeriode: "Dîner"},
		},
	}
	s.HTTP = httptest.NewServer(http.HandlerFunc(s.route))
	return s
}

func (s *Server) Close()      { s.HTTP.Close() }
func (s *Server) URL() string { return s.HTTP.URL + "/" }

// --- réglages ---

func (s *Server) AddEtudiant(e models.Etudiant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.etudiants = append(s.etudiants, e)
}

// Seed — insère une réservation existante et retourne son id.
func (s *Server) Seed(beneficiaire, jour, periode int64, date string, statut models.Statut) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.reservations = append(s.reservations, reservation{
		ID: id, Date: date, Heure: "12:00:00", Statut: statut,
		Etudiant: beneficiaire, ReservantPour: beneficiaire,
		Jour: jour, Periode: periode,
	})
	return id
}

// FailOn — toute requête sur ce chemin répond 500.
func (s *Server) FailOn(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPaths[path] = true
}

func (s *Server) BreakRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = ""
}

// --- lectures pour assertions ---

func (s *Server) CreateCalls() int  { s.mu.Lock(); defer s.mu.Unlock(); return s.createCalls }
func (s *Server) PatchCalls() int   { s.mu.Lock(); defer s.mu.Unlock(); return s.patchCalls }
func (s *Server) RefreshCalls() int { s.mu.Lock(); defer s.mu.Unlock(); return s.refreshCalls }

func (s *Server) Reservation(id int64) (models.Statut, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations {
		if r.ID == id {
			return r.Statut, true
		}
	}
	return "", false
}

func (s *Server) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.reservations {
		if r.Statut == models.StatutValide {
			n++
		}
	}
	return n
}

// --- routage ---

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	s.mu.Lock()
	failed := s.failPaths[path]
	s.mu.Unlock()
	if failed {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "erreur interne du serveur"})
		return
	}

	switch {
	case path == "auth/token/" && r.Method == http.MethodPost:
		s.handleLogin(w, r)
	case path == "auth/token/refresh/" && r.Method == http.MethodPost:
		s.handleRefresh(w, r)
	case path == "user-details/" && r.Method == http.MethodGet:
		if !s.authed(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 42, "email": "guichet@emigresto.cm"})
	case path == "etudiants/" && r.Method == http.MethodGet:
		if !s.authed(w, r) {
			return
		}
		s.list(w, func() any { return s.etudiants })
	case path == "jours/" && r.Method == http.MethodGet:
		if !s.authed(w, r) {
			return
		}
		s.list(w, func() any { return s.jours })
	case path == "periodes/" && r.Method == http.MethodGet:
		if !s.authed(w, r) {
			return
		}
		s.list(w, func() any { return s.periodes })
	case path == "reservations/" && r.Method == http.MethodGet:
		if !s.authed(w, r) {
			return
		}
		s.list(w, s.renderReservations)
	case path == "reservations/" && r.Method == http.MethodPost:
		if !s.authed(w, r) {
			return
		}
		s.handleCreate(w, r)
	case strings.HasPrefix(path, "reservations/") && r.Method == http.MethodPatch:
		if !s.authed(w, r) {
			return
		}
		s.handlePatch(w, r, strings.TrimSuffix(strings.TrimPrefix(path, "reservations/"), "/"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "non trouvé"})
	}
}

func (s *Server) authed(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	want := "Bearer " + s.validAccess
	s.mu.Unlock()
	if r.Header.Get("Authorization") != want {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token invalide ou expiré"})
		return false
	}
	return true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"non_field_errors": []string{"identifiants invalides"}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"access": s.validAccess, "refresh": s.refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++
	if s.refresh == "" || in.Refresh != s.refresh {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "refresh token invalide"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": s.validAccess})
}

func (s *Server) list(w http.ResponseWriter, results func() any) {
	s.mu.Lock()
	out := results()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"count": 0, "next": nil, "previous": nil, "results": out})
}

func (s *Server) renderReservations() any {
	out := make([]map[string]any, 0, len(s.reservations))
	for _, r := range s.reservations {
		out = append(out, map[string]any{
			"id":     r.ID,
			"date":   r.Date,
			"heure":  r.Heure,
			"statut": r.Statut,
			// formes mixtes, comme le vrai serializer
			"etudiant":       map[string]any{"id": r.Etudiant, "nom": "X", "prenom": "Y"},
			"reservant_pour": r.ReservantPour,
			"jour":           map[string]any{"id": r.Jour},
			"periode":        map[string]any{"id": r.Periode},
		})
	}
	return out
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ReservantPour int64  `json:"reservant_pour"`
		Jour          int64  `json:"jour"`
		Periode       int64  `json:"periode"`
		Date          string `json:"date"`
		Heure         string `json:"heure"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "corps illisible"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++

	// doublon actif → 400, comme la validation du serializer
	for _, ex := range s.reservations {
		if ex.Statut == models.StatutValide && ex.ReservantPour == in.ReservantPour &&
			ex.Jour == in.Jour && ex.Periode == in.Periode && ex.Date == in.Date {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"non_field_errors": []string{"réservation valide déjà existante pour ce bénéficiaire"},
			})
			return
		}
	}
	// réactivation d'une annulée pour la même clé naturelle
	for i, ex := range s.reservations {
		if ex.Statut == models.StatutAnnule && ex.ReservantPour == in.ReservantPour &&
			ex.Periode == in.Periode && ex.Date == in.Date {
			s.reservations[i].Statut = models.StatutValide
			s.reservations[i].Jour = in.Jour
			s.reservations[i].Heure = in.Heure
			writeJSON(w, http.StatusOK, map[string]any{"id": ex.ID})
			return
		}
	}
	id := s.nextID
	s.nextID++
	s.reservations = append(s.reservations, reservation{
		ID: id, Date: in.Date, Heure: in.Heure, Statut: models.StatutValide,
		Etudiant: in.ReservantPour, ReservantPour: in.ReservantPour,
		Jour: in.Jour, Periode: in.Periode,
	})
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "date": in.Date, "statut": "VALIDE"})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "non trouvé"})
		return
	}
	var in struct {
		Statut models.Statut `json:"statut"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "corps illisible"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patchCalls++
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			s.reservations[i].Statut = in.Statut
			writeJSON(w, http.StatusOK, map[string]any{"id": id, "statut": in.Statut})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "réservation inconnue"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// MemTokens — api.TokenStore en mémoire.
type MemTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func NewMemTokens(access, refresh string) *MemTokens {
	return &MemTokens{access: access, refresh: refresh}
}

func (m *MemTokens) Access(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, nil
}

func (m *MemTokens) Refresh(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh, nil
}

func (m *MemTokens) SetAccess(_ context.Context, access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	return nil
}

func (m *MemTokens) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = "", ""
	return nil
}
