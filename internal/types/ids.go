package types

import (
	"time"

	"github.com/google/uuid"
)

// NewSessionID generates a UUIDv7 session identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewSessionID() SessionID {
	return SessionID(uuid.Must(uuid.NewV7()).String())
}

// NewVariantID generates a UUIDv7 variant identifier.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
func NewVariantID() VariantID {
	return VariantID(uuid.Must(uuid.NewV7()).String())
}

// ParseSessionID validates and converts a string to SessionID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseSessionID(s string) (SessionID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return SessionID(s), nil
}

// ParseVariantID validates and converts a string to VariantID.
func ParseVariantID(s string) (VariantID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return VariantID(s), nil
}

// VariantIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Enables time-based queries without database lookup.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func VariantIDTime(id VariantID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
