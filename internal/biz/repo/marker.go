package repo

import (
	"context"
	"time"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// MarkerRepo stores short-lived logout markers keyed by browser client
type MarkerRepo interface {
	// Put stores the marker, replacing any previous one
	Put(ctx context.Context, clientID string, marker domain.LogoutMarker, ttl time.Duration) error

	// Get returns the marker or domain.ErrMarkerNotFound
	Get(ctx context.Context, clientID string) (*domain.LogoutMarker, error)

	// Delete removes the marker, missing markers are not an error
	Delete(ctx context.Context, clientID string) error
}
