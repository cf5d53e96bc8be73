package api

import "testing"

func TestMetricPath(t *testing.T) {
	cases := map[string]string{
		"reservations/":       "reservations/",
		"reservations/42/":    "reservations/{id}/",
		"reservations/10500/": "reservations/{id}/",
		"jours/":              "jours/",
		"auth/token/refresh/": "auth/token/refresh/",
		"etudiants/7/grille/": "etudiants/{id}/grille/",
	}
	for in, want := range cases {
		if got := metricPath(in); got != want {
			t.Fatalf("%q: attendu %q, obtenu %q", in, want, got)
		}
	}
}
