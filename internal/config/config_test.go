package config

import (
	"testing"
)

func TestParseIDs(t *testing.T) {
	cases := []struct {
		in      string
		want    []int64
		wantErr bool
	}{
		{"", nil, false},
		{"123", []int64{123}, false},
		{"1,2, 3", []int64{1, 2, 3}, false},
		{"1 2 3", []int64{1, 2, 3}, false},
		{"abc", nil, true},
	}
	for _, c := range cases {
		got, err := parseIDs(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("%q: erreur attendue", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if len(got) != len(c.want) {
			t.Fatalf("%q: attendu %v, obtenu %v", c.in, c.want, got)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q: attendu %v, obtenu %v", c.in, c.want, got)
			}
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://localhost/restobot")
	t.Setenv("API_BASE_URL", "https://api.emigresto.cm/api/")
	t.Setenv("ADMIN_IDS", "10, 20")
	t.Setenv("TZ", "Africa/Douala")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.LogLevel != "info" || cfg.Env != "dev" {
		t.Fatalf("défauts: %+v", cfg)
	}
	if cfg.StudentsPageSize != 500 || cfg.ReservationsPageSize != 1000 {
		t.Fatalf("tailles de page: %+v", cfg)
	}
	if len(cfg.AdminIDs) != 2 || cfg.AdminIDs[1] != 20 {
		t.Fatalf("admin ids: %v", cfg.AdminIDs)
	}
	if cfg.Location == nil || cfg.Location.String() != "Africa/Douala" {
		t.Fatalf("fuseau: %v", cfg.Location)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://localhost/restobot")
	t.Setenv("API_BASE_URL", "http://localhost:8000/api/")
	t.Setenv("STUDENTS_PAGE_SIZE", "50")
	t.Setenv("RESERVATIONS_PAGE_SIZE", "pas-un-nombre")
	t.Setenv("ENV", "prod")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StudentsPageSize != 50 {
		t.Fatalf("page étudiants: %d", cfg.StudentsPageSize)
	}
	// valeur illisible → défaut, pas d'erreur
	if cfg.ReservationsPageSize != 1000 {
		t.Fatalf("page réservations: %d", cfg.ReservationsPageSize)
	}
	if cfg.Env != "prod" {
		t.Fatalf("env: %q", cfg.Env)
	}
}
