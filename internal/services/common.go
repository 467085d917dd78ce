package services

import (
	"context"
	"errors"
	"strings"

	"jobcard-backend/internal/store"
)

var ErrConfirmationRequired = errors.New("confirmation required: pass confirm=true")

const conflictRetries = 3

// retryOnConflict reruns fn while the store reports a concurrent write.
// The store has already reloaded by the time fn runs again.
func retryOnConflict(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i < conflictRetries; i++ {
		if err = fn(); !errors.Is(err, store.ErrVersionConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

// containsFold reports whether any field contains query, ignoring case.
func containsFold(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
