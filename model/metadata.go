package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/siherrmann/ucca/helper"
)

// Metadata is the string-keyed attribute map carried by passages, layers,
// nodes and edges. It doubles as JSONB metadata in PostgreSQL.
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (m Metadata) Value() (driver.Value, error) {
	return m.Marshal()
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	return m.Unmarshal(value)
}

// Marshal converts Metadata to JSON bytes
func (m Metadata) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal converts JSON bytes or Metadata to Metadata
func (m *Metadata) Unmarshal(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}

	if s, ok := value.(Metadata); ok {
		*m = s
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, m)
}

// Copy returns a shallow copy of the metadata map
func (m Metadata) Copy() Metadata {
	c := make(Metadata, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Bool reads a boolean attribute, false if missing or of another type
func (m Metadata) Bool(key string) bool {
	v, ok := m[key].(bool)
	return ok && v
}

// Equal reports whether two metadata maps hold the same keys and values
func (m Metadata) Equal(other Metadata) bool {
	if len(m) != len(other) {
		return false
	}
	return len(m) == 0 || reflect.DeepEqual(m, other)
}
