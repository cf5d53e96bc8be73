//go:build testutil
// +build testutil

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/emigresto/telegram-resto-bot/internal/session"
	"github.com/emigresto/telegram-resto-bot/internal/testutil/testdb"
)

func startStore(t *testing.T) *session.Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatalf("postgres jetable: %v", err)
	}
	t.Cleanup(h.Close)
	return session.NewStore(h.DB)
}

func TestSessionLifecycle(t *testing.T) {
	store := startStore(t)
	ctx := context.Background()
	const chatID = int64(777)

	// chat inconnu → pas de session, pas d'erreur
	s, err := store.Get(ctx, chatID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.LoggedIn() {
		t.Fatal("session fantôme connectée")
	}

	if err := store.SaveLogin(ctx, chatID, "acc-1", "ref-1", 42, "guichet@emigresto.cm"); err != nil {
		t.Fatalf("save login: %v", err)
	}
	s, err = store.Get(ctx, chatID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !s.LoggedIn() || s.AccessToken != "acc-1" || s.UserID != 42 {
		t.Fatalf("session après login: %+v", s)
	}

	// reconnexion du même chat → upsert, pas de doublon
	if err := store.SaveLogin(ctx, chatID, "acc-2", "ref-2", 42, "guichet@emigresto.cm"); err != nil {
		t.Fatalf("re-login: %v", err)
	}
	s, _ = store.Get(ctx, chatID)
	if s.AccessToken != "acc-2" || s.RefreshToken != "ref-2" {
		t.Fatalf("upsert raté: %+v", s)
	}

	if err := store.SetAccess(ctx, chatID, "acc-3"); err != nil {
		t.Fatalf("set access: %v", err)
	}
	s, _ = store.Get(ctx, chatID)
	if s.AccessToken != "acc-3" {
		t.Fatalf("access non mis à jour: %+v", s)
	}

	// clear purge les tokens mais garde le base URL du chat
	if err := store.SetBaseURL(ctx, chatID, "https://preprod.emigresto.cm/api/"); err != nil {
		t.Fatalf("set base url: %v", err)
	}
	if err := store.Clear(ctx, chatID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	s, _ = store.Get(ctx, chatID)
	if s.LoggedIn() {
		t.Fatal("session encore connectée après clear")
	}
	if s == nil || s.BaseURL != "https://preprod.emigresto.cm/api/" {
		t.Fatalf("base url perdu au clear: %+v", s)
	}
}

func TestChatTokens(t *testing.T) {
	store := startStore(t)
	ctx := context.Background()
	const chatID = int64(888)

	if err := store.SaveLogin(ctx, chatID, "acc", "ref", 1, "x@y.z"); err != nil {
		t.Fatalf("save login: %v", err)
	}
	tokens := store.Tokens(chatID)

	access, err := tokens.Access(ctx)
	if err != nil || access != "acc" {
		t.Fatalf("access: %q, %v", access, err)
	}
	refresh, err := tokens.Refresh(ctx)
	if err != nil || refresh != "ref" {
		t.Fatalf("refresh: %q, %v", refresh, err)
	}

	if err := tokens.SetAccess(ctx, "acc-2"); err != nil {
		t.Fatalf("set access: %v", err)
	}
	if access, _ = tokens.Access(ctx); access != "acc-2" {
		t.Fatalf("access après rotation: %q", access)
	}

	if err := tokens.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if access, _ = tokens.Access(ctx); access != "" {
		t.Fatalf("access après purge: %q", access)
	}
}

func TestDeleteStale(t *testing.T) {
	store := startStore(t)
	ctx := context.Background()

	if err := store.SaveLogin(ctx, 1, "a", "r", 1, "a@b.c"); err != nil {
		t.Fatalf("save login: %v", err)
	}
	if err := store.SaveLogin(ctx, 2, "a", "r", 2, "d@e.f"); err != nil {
		t.Fatalf("save login: %v", err)
	}

	// vieillit artificiellement la session 1
	if _, err := store.DB().ExecContext(ctx,
		`UPDATE sessions SET updated_at = now() - interval '40 days' WHERE chat_id = 1`); err != nil {
		t.Fatalf("vieillissement: %v", err)
	}

	n, err := store.DeleteStale(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("delete stale: %v", err)
	}
	if n != 1 {
		t.Fatalf("attendu 1 session purgée, obtenu %d", n)
	}
	if s, _ := store.Get(ctx, 2); !s.LoggedIn() {
		t.Fatal("session fraîche purgée")
	}
}
