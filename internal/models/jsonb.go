package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

//
// Postgres column helpers for the catalog table
//

// StringList is a helper for Postgres jsonb columns holding a string array
// (the capabilities column). Works with sqlx / database/sql.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("StringList: expected []byte, got %T", value)
	}

	if len(b) == 0 {
		*l = nil
		return nil
	}

	return json.Unmarshal(b, l)
}

// JSONB is a helper for Postgres jsonb columns backed by map[string]any
// (the limits column).
type JSONB map[string]any

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (j *JSONB) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("JSONB: expected []byte, got %T", value)
	}

	if len(b) == 0 {
		*j = nil
		return nil
	}

	return json.Unmarshal(b, j)
}
