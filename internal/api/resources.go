package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/emigresto/telegram-resto-bot/internal/models"
)

// Enveloppe des endpoints listés (pagination DRF).
type listEnvelope[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var env listEnvelope[T]
	if err := c.do(ctx, http.MethodGet, path, query, nil, &env); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return env.Results, nil
}

func pageQuery(pageSize int) url.Values {
	q := url.Values{}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	return q
}

func (c *Client) Etudiants(ctx context.Context, pageSize int) ([]models.Etudiant, error) {
	return list[models.Etudiant](ctx, c, "etudiants/", pageQuery(pageSize))
}

func (c *Client) Jours(ctx context.Context) ([]models.Jour, error) {
	return list[models.Jour](ctx, c, "jours/", pageQuery(7))
}

func (c *Client) Periodes(ctx context.Context) ([]models.Periode, error) {
	return list[models.Periode](ctx, c, "periodes/", pageQuery(50))
}

// ReservationFilter — options du GET /reservations/. Les bornes de date
// suivent la convention de filtrage du backend (date__gte / date__lte).
type ReservationFilter struct {
	PageSize int
	DateFrom string // YYYY-MM-DD inclus
	DateTo   string // YYYY-MM-DD inclus
}

func (c *Client) Reservations(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	q := pageQuery(f.PageSize)
	if f.DateFrom != "" {
		q.Set("date__gte", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("date__lte", f.DateTo)
	}
	return list[models.Reservation](ctx, c, "reservations/", q)
}

// ReservationCreate — corps du POST /reservations/. L'initiateur est
// déduit du token côté serveur; reservant_pour désigne le bénéficiaire.
// Si une réservation ANNULE existe pour la même clé naturelle, le serveur
// la réactive au lieu de créer un doublon.
type ReservationCreate struct {
	ReservantPour int64  `json:"reservant_pour"`
	Jour          int64  `json:"jour"`
	Periode       int64  `json:"periode"`
	Date          string `json:"date"`
	Heure         string `json:"heure"`
}

func (c *Client) CreateReservation(ctx context.Context, in ReservationCreate) (models.Reservation, error) {
	var out models.Reservation
	if err := c.do(ctx, http.MethodPost, "reservations/", nil, in, &out); err != nil {
		return models.Reservation{}, fmt.Errorf("POST reservations/: %w", err)
	}
	return out, nil
}

// CancelReservation — annulation douce: PATCH statut=ANNULE. Le DELETE
// existe encore côté serveur mais c'est un reliquat; on ne l'expose pas.
func (c *Client) CancelReservation(ctx context.Context, id int64) error {
	path := fmt.Sprintf("reservations/%d/", id)
	body := map[string]string{"statut": string(models.StatutAnnule)}
	if err := c.do(ctx, http.MethodPatch, path, nil, body, nil); err != nil {
		return fmt.Errorf("PATCH %s: %w", path, err)
	}
	return nil
}
