package api

import (
	"context"
	"fmt"
	"net/http"
)

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type UserDetails struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Nom   string `json:"nom"`
	Role  string `json:"role"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Telephone string `json:"telephone,omitempty"`
}

// Login — POST auth/token/. Ne persiste rien: l'appelant enregistre la
// paire dans la session du chat.
func (c *Client) Login(ctx context.Context, email, password string) (TokenPair, error) {
	var out TokenPair
	body := map[string]string{"email": email, "password": password}
	if err := c.doUnauth(ctx, http.MethodPost, "auth/token/", body, &out); err != nil {
		return TokenPair{}, fmt.Errorf("auth/token/: %w", err)
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) error {
	if err := c.doUnauth(ctx, http.MethodPost, "auth/register/", in, nil); err != nil {
		return fmt.Errorf("auth/register/: %w", err)
	}
	return nil
}

// Logout — invalide le refresh token côté serveur puis purge la session
// locale. L'échec serveur n'empêche pas la purge.
func (c *Client) Logout(ctx context.Context) error {
	refresh, err := c.ts.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("token store: %w", err)
	}
	var srvErr error
	if refresh != "" {
		srvErr = c.do(ctx, http.MethodPost, "auth/logout/", nil, map[string]string{"refresh": refresh}, nil)
	}
	if err := c.ts.Clear(ctx); err != nil {
		return fmt.Errorf("token store: %w", err)
	}
	return srvErr
}

func (c *Client) Me(ctx context.Context) (UserDetails, error) {
	var out UserDetails
	if err := c.do(ctx, http.MethodGet, "user-details/", nil, nil, &out); err != nil {
		return UserDetails{}, fmt.Errorf("user-details/: %w", err)
	}
	return out, nil
}
