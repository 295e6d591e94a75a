package jinn

import (
	"fmt"

	"github.com/google/uuid"
)

// newRecordID generates a time-ordered UUIDv1 string for records inserted
// without an explicit "_id".
func newRecordID() (string, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", fmt.Errorf("jinn: generate id: %w", err)
	}

	return id.String(), nil
}
