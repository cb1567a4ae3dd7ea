package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// suggestionsArray marshals a suggestion list to and from a JSONB column.
type suggestionsArray []string

// Value implements driver.Valuer.
func (a suggestionsArray) Value() (driver.Value, error) {
	if a == nil {
		a = suggestionsArray{}
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *suggestionsArray) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into suggestions array", src)
	}
}
