package models

import (
	"encoding/json"
	"fmt"
)

// Ref — référence vers une autre ressource. Le backend renvoie tantôt
// l'objet imbriqué (`{"id": 3, ...}`), tantôt l'id nu (`3`), selon le
// serializer. On normalise vers l'id dès le décodage au lieu de chaîner
// des accès optionnels partout.
type Ref int64

func (r *Ref) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*r = 0
		return nil
	}
	if b[0] == '{' {
		var obj struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return fmt.Errorf("ref object: %w", err)
		}
		if obj.ID == 0 {
			return fmt.Errorf("ref object without id: %s", compact(b))
		}
		*r = Ref(obj.ID)
		return nil
	}
	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("ref id: %w", err)
	}
	*r = Ref(id)
	return nil
}

func (r Ref) Int64() int64 { return int64(r) }

func compact(b []byte) string {
	if len(b) > 64 {
		return string(b[:64]) + "…"
	}
	return string(b)
}
