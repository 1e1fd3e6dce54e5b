// Package record defines the certificate record and the stores it is read from.
package record

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Record is the certificate payload stored under an opaque identifier.
type Record struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	CourseName string `json:"course_name"`
	IssuedDate string `json:"issued_date"`
	Style      string `json:"style,omitempty"`
}

// FullName joins first and last name with a single space.
func (r Record) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// IssuedOn returns the issue date for display. ISO dates (2006-01-02) are
// rendered as "6 June 2025"; anything else is returned unchanged.
func (r Record) IssuedOn() string {
	raw := strings.TrimSpace(r.IssuedDate)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.Format("2 January 2006")
	}
	return raw
}

// Store looks records up by identifier. Implementations return an error
// wrapping apperr.ErrNotFound when the identifier is unknown.
type Store interface {
	Get(ctx context.Context, id string) (Record, error)
}

// KeyPrefix is prepended to identifiers to form store keys.
const KeyPrefix = "cert:"

// Key returns the store key of an identifier.
func Key(id string) string { return KeyPrefix + id }

// Decode parses a JSON record.
func Decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
