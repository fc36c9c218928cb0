package port

import (
	"context"
	"github.com/nikolayk812/storefront/internal/domain"
)

// SessionProbe resolves a bearer token to an identity. A false result means guest mode, not an error.
type SessionProbe interface {
	Resolve(ctx context.Context, token string) (domain.Identity, bool)
}
