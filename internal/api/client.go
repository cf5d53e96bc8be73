package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/emigresto/telegram-resto-bot/internal/ctxutil"
	"github.com/emigresto/telegram-resto-bot/internal/metrics"
)

// TokenStore — persistance des tokens d'une session (un chat = une session).
// Implémenté par internal/session sur Postgres, et par des fakes en test.
type TokenStore interface {
	Access(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
	SetAccess(ctx context.Context, access string) error
	Clear(ctx context.Context) error
}

// Client — client HTTP du backend EmiGResto. Bearer token, refresh
// automatique sur 401 (une seule tentative par requête, refresh partagé
// entre requêtes concurrentes), enveloppe d'erreur décodée en *Error.
type Client struct {
	base *url.URL
	http *http.Client
	ts   TokenStore
	log  *zap.Logger

	refreshMu  sync.Mutex
	refreshing chan struct{}
	refreshTok string
	refreshErr error
}

func New(baseURL string, ts TokenStore, log *zap.Logger) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: 15 * time.Second},
		ts:   ts,
		log:  log,
	}, nil
}

// expiringSoon — lit la claim exp du JWT sans vérifier la signature (la
// vérification appartient au serveur). Permet de rafraîchir avant de
// s'offrir un 401 garanti.
func expiringSoon(access string) bool {
	if access == "" {
		return false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(access, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < 30*time.Second
}

// do exécute une requête authentifiée. 401 → refresh puis une seule
// relance; l'appelant ne voit jamais le 401 intermédiaire.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	access, err := c.ts.Access(ctx)
	if err != nil {
		return fmt.Errorf("token store: %w", err)
	}
	if expiringSoon(access) {
		if tok, err := c.refreshAccess(ctx); err == nil {
			access = tok
		}
		// en cas d'échec on tente quand même: le 401 suivra le chemin normal
	}

	status, raw, err := c.roundTrip(ctx, method, path, query, body, access)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		tok, err := c.refreshAccess(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSessionExpiree, err)
		}
		status, raw, err = c.roundTrip(ctx, method, path, query, body, tok)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: 401 après refresh", ErrSessionExpiree)
		}
	}
	if status/100 != 2 {
		return parseError(status, raw)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s %s: décodage réponse: %w", method, path, err)
		}
	}
	return nil
}

// doUnauth — pour les endpoints d'émission de tokens (pas de bearer, pas
// de retry).
func (c *Client) doUnauth(ctx context.Context, method, path string, body, out any) error {
	status, raw, err := c.roundTrip(ctx, method, path, nil, body, "")
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return parseError(status, raw)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s %s: décodage réponse: %w", method, path, err)
		}
	}
	return nil
}

// metricPath — étiquette Prometheus d'un chemin: les ids concrets sont
// remplacés par "{id}" pour borner la cardinalité des labels.
func metricPath(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s == "" {
			continue
		}
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			segs[i] = "{id}"
		}
	}
	return strings.Join(segs, "/")
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any, access string) (int, []byte, error) {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encodage corps: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	t0 := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest(metricPath(path), "transport", time.Since(t0))
		return 0, nil, fmt.Errorf("réseau: impossible de contacter le serveur: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("lecture réponse: %w", err)
	}
	metrics.ObserveAPIRequest(metricPath(path), strconv.Itoa(resp.StatusCode/100*100), time.Since(t0))
	if resp.StatusCode/100 != 2 {
		fields := []zap.Field{
			zap.String("method", method), zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		}
		if op, ok := ctxutil.Op(ctx); ok {
			fields = append(fields, zap.String("op", op))
		}
		if chatID, ok := ctxutil.ChatID(ctx); ok {
			fields = append(fields, zap.Int64("chat_id", chatID))
		}
		c.log.Debug("api error", fields...)
	}
	return resp.StatusCode, raw, nil
}

// refreshAccess — refresh "single-flight": un seul POST token/refresh/ en
// vol; les requêtes concurrentes qui prennent un 401 attendent le même
// résultat et repartent avec le nouveau token.
func (c *Client) refreshAccess(ctx context.Context) (string, error) {
	c.refreshMu.Lock()
	if c.refreshing != nil {
		ch := c.refreshing
		c.refreshMu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		c.refreshMu.Lock()
		tok, err := c.refreshTok, c.refreshErr
		c.refreshMu.Unlock()
		return tok, err
	}
	ch := make(chan struct{})
	c.refreshing = ch
	c.refreshMu.Unlock()

	tok, err := c.doRefresh(ctx)

	c.refreshMu.Lock()
	c.refreshTok, c.refreshErr = tok, err
	c.refreshing = nil
	close(ch)
	c.refreshMu.Unlock()
	return tok, err
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	refresh, err := c.ts.Refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("token store: %w", err)
	}
	if refresh == "" {
		metrics.TokenRefreshes.WithLabelValues("missing").Inc()
		return "", fmt.Errorf("pas de refresh token")
	}
	var out struct {
		Access string `json:"access"`
	}
	err = c.doUnauth(ctx, http.MethodPost, "auth/token/refresh/", map[string]string{"refresh": refresh}, &out)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		// refresh mort: on purge la session, le prochain écran sera le login
		_ = c.ts.Clear(ctx)
		return "", err
	}
	if err := c.ts.SetAccess(ctx, out.Access); err != nil {
		return "", fmt.Errorf("token store: %w", err)
	}
	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	return out.Access, nil
}
