package login

import (
	"context"

	"github.com/geocoder89/alumniportal/internal/domain/identity"
)

type IdentityFinder interface {
	FindByContact(ctx context.Context, email, mobile string) (identity.Identity, error)
}

type Resolver struct {
	store IdentityFinder
}

func NewResolver(store IdentityFinder) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the first identity whose email or mobile matches.
//
// SECURITY: the password is not checked. A matching contact is enough to
// log in; password verification is not implemented.
func (r *Resolver) Resolve(ctx context.Context, email, mobile string) (identity.Identity, error) {
	email = identity.NormalizeContact(email)
	mobile = identity.NormalizeContact(mobile)

	if err := identity.ValidateContact(email, mobile); err != nil {
		return identity.Identity{}, err
	}

	return r.store.FindByContact(ctx, email, mobile)
}
