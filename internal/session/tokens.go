package session

import "context"

// ChatTokens — vue api.TokenStore d'une session, liée à un chat.
type ChatTokens struct {
	store  *Store
	chatID int64
}

func (s *Store) Tokens(chatID int64) *ChatTokens {
	return &ChatTokens{store: s, chatID: chatID}
}

func (t *ChatTokens) Access(ctx context.Context) (string, error) {
	sess, err := t.store.Get(ctx, t.chatID)
	if err != nil || sess == nil {
		return "", err
	}
	return sess.AccessToken, nil
}

func (t *ChatTokens) Refresh(ctx context.Context) (string, error) {
	sess, err := t.store.Get(ctx, t.chatID)
	if err != nil || sess == nil {
		return "", err
	}
	return sess.RefreshToken, nil
}

func (t *ChatTokens) SetAccess(ctx context.Context, access string) error {
	return t.store.SetAccess(ctx, t.chatID, access)
}

func (t *ChatTokens) Clear(ctx context.Context) error {
	return t.store.Clear(ctx, t.chatID)
}
