// Package repository defines the profile store interface and its in-memory
// implementation.
package repository

import (
	"context"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/model"
)

// Store provides per-user access to behavioral profiles. Unknown users are
// lazily materialized as zeroed profiles rather than failing; profiles are
// never deleted by this core.
type Store interface {
	// Get returns the profile for userID, or a zeroed profile if none
	// exists yet. Reads do not materialize anything.
	Get(ctx context.Context, userID string) (model.Profile, error)

	// Update runs mutate on the user's profile under that user's lock,
	// serializing concurrent read-modify-write cycles. The profile is
	// created zeroed on first touch. A mutate error aborts the update.
	Update(ctx context.Context, userID string, mutate func(*model.Profile) error) (model.Profile, error)

	// Count returns the number of materialized profiles.
	Count(ctx context.Context) int
}
