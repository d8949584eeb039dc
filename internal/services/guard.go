package services

import (
	"context"
	"errors"

	"github.com/devicelink/backend/internal/models"
)

// Guard holds the stateless authorization predicates. Callers pass the
// token-verified identity, never request input.
type Guard struct {
	users *UserService
}

func NewGuard(users *UserService) *Guard {
	return &Guard{users: users}
}

// RequireAdmin resolves the acting user and fails with ErrForbidden if the
// user is absent or not an admin. The two cases are indistinguishable to the
// caller so the check never reveals account existence.
func (g *Guard) RequireAdmin(ctx context.Context, username string) (*models.User, error) {
	u, err := g.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if !u.IsAdmin {
		return nil, ErrForbidden
	}
	return u, nil
}

// RequireOwner fails unless the listing belongs to the acting user.
func (g *Guard) RequireOwner(listing *models.Listing, username string) error {
	if listing.Owner != username {
		return ErrForbidden
	}
	return nil
}
