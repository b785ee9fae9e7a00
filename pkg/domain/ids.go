// Package domain holds typed identifiers shared across the module.
// IDs are distinct types over uuid.UUID so a client id can never be
// passed where another kind of id is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "clientele/pkg/domain-errors"
)

// ClientID identifies one client knowledge record for its whole lifetime.
type ClientID uuid.UUID

// NewClientID generates a fresh random client id.
func NewClientID() ClientID {
	return ClientID(uuid.New())
}

// ParseClientID parses an id from its string form.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseClientID(s string) (ClientID, error) {
	if s == "" {
		return ClientID{}, dErrors.New(dErrors.CodeInvalidInput, "client id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return ClientID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "client id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return ClientID{}, dErrors.New(dErrors.CodeInvalidInput, "client id must not be the nil UUID")
	}
	return ClientID(parsed), nil
}

func (id ClientID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the id is the zero value.
func (id ClientID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText renders the id as its canonical UUID string.
func (id ClientID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the id from its canonical UUID string.
func (id *ClientID) UnmarshalText(text []byte) error {
	parsed, err := ParseClientID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
