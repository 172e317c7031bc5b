package signup

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/alumniportal/internal/domain/identity"
)

type IdentityCreator interface {
	Create(ctx context.Context, req identity.CreateRequest) (identity.Identity, error)
}

type Mirrorer interface {
	Mirror(i identity.Identity)
}

// Service registers students and alumni: contact check, canonical write,
// then a mirror dispatch that is never awaited.
type Service struct {
	store        IdentityCreator
	mirror       Mirrorer
	log          *slog.Logger
	storeTimeout time.Duration
}

func NewService(store IdentityCreator, mirror Mirrorer, log *slog.Logger, storeTimeout time.Duration) *Service {
	if log == nil {
		log = slog.Default()
	}
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}

	return &Service{
		store:        store,
		mirror:       mirror,
		log:          log,
		storeTimeout: storeTimeout,
	}
}

func (s *Service) SignupStudent(ctx context.Context, in identity.StudentSignup) (identity.Identity, error) {
	return s.register(ctx, in.CreateRequest())
}

func (s *Service) SignupAlumni(ctx context.Context, in identity.AlumniSignup) (identity.Identity, error) {
	return s.register(ctx, in.CreateRequest())
}

func (s *Service) register(ctx context.Context, req identity.CreateRequest) (identity.Identity, error) {
	if err := identity.ValidateContact(req.Email, req.Mobile); err != nil {
		return identity.Identity{}, err
	}

	// a client hanging up must not abort the insert half way
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
	defer cancel()

	created, err := s.store.Create(writeCtx, req)
	if err != nil {
		return identity.Identity{}, err
	}

	s.log.InfoContext(ctx, "identity registered",
		"identity_id", created.ID,
		"user_type", string(created.UserType),
	)

	if s.mirror != nil {
		s.mirror.Mirror(created)
	}

	return created, nil
}
