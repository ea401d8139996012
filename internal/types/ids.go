package types

import (
	"time"

	"github.com/google/uuid"
)

// TransactionID identifies one pricing transaction for diagnostics
// correlation. UUIDv7 time-ordering keeps trace output sortable by
// transaction start.
type TransactionID string

// NewTransactionID generates a UUIDv7 transaction identifier.
func NewTransactionID() TransactionID {
	return TransactionID(uuid.Must(uuid.NewV7()).String())
}

// ParseTransactionID validates and converts a string to TransactionID.
func ParseTransactionID(s string) (TransactionID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return TransactionID(s), nil
}

// TransactionIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns the zero time for invalid IDs.
func TransactionIDTime(id TransactionID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
