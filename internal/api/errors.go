package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpiree — le refresh du token a échoué; l'utilisateur doit se
// reconnecter. Les handlers forcent le retour à l'écran de connexion.
var ErrSessionExpiree = errors.New("session expirée, reconnectez-vous")

// Error — enveloppe d'erreur du backend:
// {detail?, non_field_errors?, ...erreurs par champ}.
type Error struct {
	Status         int
	Detail         string
	NonFieldErrors []string
	FieldErrors    map[string][]string
}

// Message — texte montrable à l'utilisateur, par ordre de priorité:
// detail, puis première non_field_error, puis un générique avec le code.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.NonFieldErrors) > 0 {
		return e.NonFieldErrors[0]
	}
	for field, msgs := range e.FieldErrors {
		if len(msgs) > 0 {
			return field + ": " + msgs[0]
		}
	}
	return fmt.Sprintf("erreur serveur (HTTP %d)", e.Status)
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: http %d: %s", e.Status, e.Message())
}

func (e *Error) NotFound() bool   { return e.Status == http.StatusNotFound }
func (e *Error) Validation() bool { return e.Status == http.StatusBadRequest }

// parseError décode l'enveloppe d'erreur; un corps illisible donne quand
// même une *Error exploitable avec le seul code HTTP.
func parseError(status int, body []byte) *Error {
	apiErr := &Error{Status: status}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return apiErr
	}
	for k, v := range raw {
		switch k {
		case "detail":
			_ = json.Unmarshal(v, &apiErr.Detail)
		case "non_field_errors":
			_ = json.Unmarshal(v, &apiErr.NonFieldErrors)
		default:
			var msgs []string
			if err := json.Unmarshal(v, &msgs); err != nil {
				var one string
				if err := json.Unmarshal(v, &one); err != nil {
					continue
				}
				msgs = []string{one}
			}
			if apiErr.FieldErrors == nil {
				apiErr.FieldErrors = make(map[string][]string)
			}
			apiErr.FieldErrors[k] = msgs
		}
	}
	return apiErr
}

// UserMessage — message utilisateur pour n'importe quelle erreur issue du
// client API: enveloppe serveur si disponible, sinon l'erreur de transport.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if errors.Is(err, ErrSessionExpiree) {
		return ErrSessionExpiree.Error()
	}
	return err.Error()
}
