// Package platforms implements one fetch adapter per social video
// platform, dispatched through a Registry keyed on models.Platform instead
// of a string switch.
package platforms

import (
	"context"

	"github.com/clipdeck/statistics-service/internal/models"
)

// Adapter normalizes a single platform's response into a PlatformStats
// tuple. The zero-versus-error policy is per platform and documented at
// each adapter: YouTube and Twitter return errors, TikTok returns zeros
// when the response carries no stats data and errors on request, status
// or decode failures, and Instagram returns zeros on any failure.
type Adapter interface {
	Fetch(ctx context.Context, videoID string) (*models.PlatformStats, error)
}

// Registry maps a Platform to its Adapter implementation.
type Registry struct {
	adapters map[models.Platform]Adapter
}

// NewRegistry builds an empty Registry; adapters are added with Register.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[models.Platform]Adapter)}
}

// Register associates an Adapter with a Platform, overwriting any prior
// registration for that platform.
func (r *Registry) Register(platform models.Platform, adapter Adapter) {
	r.adapters[platform] = adapter
}

// Get returns the Adapter registered for platform, or ok=false if none is.
func (r *Registry) Get(platform models.Platform) (Adapter, bool) {
	a, ok := r.adapters[platform]
	return a, ok
}
