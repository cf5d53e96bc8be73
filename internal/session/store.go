package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/emigresto/telegram-resto-bot/internal/ctxutil"
	"github.com/emigresto/telegram-resto-bot/internal/session/migrations"
)

// Session — état client persistant d'un chat: tokens, identité, et
// éventuel base URL spécifique (l'app mobile d'origine laissait
// configurer l'URL de l'API).
type Session struct {
	ChatID       int64
	AccessToken  string
	RefreshToken string
	UserID       int64
	Email        string
	BaseURL      string // "" = URL globale de la config
	UpdatedAt    time.Time
}

func (s *Session) LoggedIn() bool { return s != nil && s.RefreshToken != "" }

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore — enveloppe une connexion existante (tests).
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

// Get — session du chat, nil si inconnue.
func (s *Store) Get(ctx context.Context, chatID int64) (*Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT chat_id, access_token, refresh_token, user_id, email, base_url, updated_at
		FROM sessions WHERE chat_id = $1`, chatID)
	var out Session
	err := row.Scan(&out.ChatID, &out.AccessToken, &out.RefreshToken,
		&out.UserID, &out.Email, &out.BaseURL, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &out, nil
}

// SaveLogin — enregistre la paire de tokens et l'identité après un login.
func (s *Store) SaveLogin(ctx context.Context, chatID int64, access, refresh string, userID int64, email string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (chat_id, access_token, refresh_token, user_id, email, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (chat_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			user_id = EXCLUDED.user_id,
			email = EXCLUDED.email,
			updated_at = now()`,
		chatID, access, refresh, userID, email)
	if err != nil {
		return fmt.Errorf("save login: %w", err)
	}
	return nil
}

func (s *Store) SetAccess(ctx context.Context, chatID int64, access string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET access_token = $2, updated_at = now() WHERE chat_id = $1`,
		chatID, access)
	if err != nil {
		return fmt.Errorf("set access: %w", err)
	}
	return nil
}

// SetBaseURL — URL d'API propre à ce chat ("" pour revenir au défaut).
func (s *Store) SetBaseURL(ctx context.Context, chatID int64, baseURL string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (chat_id, base_url, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (chat_id) DO UPDATE SET base_url = EXCLUDED.base_url, updated_at = now()`,
		chatID, baseURL)
	if err != nil {
		return fmt.Errorf("set base url: %w", err)
	}
	return nil
}

// Clear — purge les tokens en gardant le réglage d'URL.
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET access_token = '', refresh_token = '', user_id = 0,
			email = '', updated_at = now()
		WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// DeleteStale — supprime les sessions inactives. Retourne le nombre de
// lignes supprimées (job périodique).
func (s *Store) DeleteStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE updated_at < now() - $1::interval`,
		fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("delete stale: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
