package auth

import (
	"errors"
)

// Authorization failure kinds.
var (
	// ErrUnauthenticated means credentials were missing or not trustworthy.
	ErrUnauthenticated = errors.New("credentials missing or invalid")
	// ErrForbidden means the caller is authenticated but does not own the resource.
	ErrForbidden = errors.New("not authorized to perform this action")
)

// Guard resolves raw tokens into authenticated identities and enforces
// ownership rules. It is side-effect free and never retries: authentication
// failures are not transient.
type Guard struct {
	tokens *TokenService
}

// NewGuard returns a Guard backed by the given token service.
func NewGuard(tokens *TokenService) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate verifies the raw token and returns the caller's identity.
// Missing and malformed tokens collapse into ErrUnauthenticated; expired
// tokens keep the distinct ErrTokenExpired so the boundary layer can tell
// clients to re-authenticate.
func (g *Guard) Authenticate(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}
	identity, err := g.tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrUnauthenticated
	}
	return identity, nil
}

// AuthorizeOwner permits the operation only when the identity owns the
// resource. Callers must confirm the resource exists before invoking this,
// so probing an unknown ID yields not-found rather than forbidden.
func (g *Guard) AuthorizeOwner(identity Identity, resourceOwnerID uint) error {
	if identity.UserID != resourceOwnerID {
		return ErrForbidden
	}
	return nil
}
