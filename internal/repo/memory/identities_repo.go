package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/alumniportal/internal/domain/identity"
	"github.com/google/uuid"
)

// IdentitiesRepo is an in-process canonical store with the same contract as
// the MongoDB adapter. Lookups scan in insertion order, like a collection
// scan without a sort.
type IdentitiesRepo struct {
	mu    sync.RWMutex
	items []identity.Identity
}

func NewIdentitiesRepo() *IdentitiesRepo {
	return &IdentitiesRepo{}
}

func (r *IdentitiesRepo) Create(_ context.Context, req identity.CreateRequest) (identity.Identity, error) {
	if err := identity.ValidateCreate(req); err != nil {
		return identity.Identity{}, err
	}

	i := identity.NewFromCreateRequest(uuid.NewString(), req, time.Now().UTC())

	r.mu.Lock()
	r.items = append(r.items, i)
	r.mu.Unlock()

	return i, nil
}

func (r *IdentitiesRepo) FindByContact(_ context.Context, email, mobile string) (identity.Identity, error) {
	email = identity.NormalizeContact(email)
	mobile = identity.NormalizeContact(mobile)

	if err := identity.ValidateContact(email, mobile); err != nil {
		return identity.Identity{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, i := range r.items {
		if i.MatchesContact(email, mobile) {
			return i, nil
		}
	}

	return identity.Identity{}, identity.ErrNotFound
}

func (r *IdentitiesRepo) Ping(context.Context) error {
	return nil
}

func (r *IdentitiesRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
