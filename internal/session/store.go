package session

import (
	"context"
	"time"

	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/google/uuid"
)

// Store maps opaque bearer tokens to admin identities.
type Store interface {
	Issue(ctx context.Context, identity domain.Identity, ttl time.Duration) (string, error)
	Lookup(ctx context.Context, token string) (domain.Identity, bool, error)
	Revoke(ctx context.Context, token string) error
}

const tokenPrefix = "sess_"

func newToken() string {
	return tokenPrefix + uuid.NewString()
}
