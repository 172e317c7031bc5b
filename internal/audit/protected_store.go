package audit

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("mirror circuit breaker open")

type ProtectedStoreConfig struct {
	Timeout          time.Duration // hard timeout per insert
	FailureThreshold int           // consecutive failures to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // allow N trial inserts in half-open
}

// ProtectedStore guards a Writer with a timeout and a circuit breaker so a
// relational outage turns into fast, logged rejections.
type ProtectedStore struct {
	inner Writer
	cfg   ProtectedStoreConfig
	mu    sync.Mutex
	now   func() time.Time

	state string // "closed" | "open" | "half_open"

	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedStore(inner Writer, cfg ProtectedStoreConfig) *ProtectedStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedStore{
		inner: inner,
		cfg:   cfg,
		now:   time.Now,
		state: "closed",
	}
}

func (s *ProtectedStore) Insert(ctx context.Context, rec Record) (int64, error) {
	if !s.allowRequest() {
		return 0, ErrCircuitOpen
	}

	insertCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	id, err := s.inner.Insert(insertCtx, rec)

	s.afterRequest(err)

	return id, err
}

func (s *ProtectedStore) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ProtectedStore) allowRequest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case "closed":
		return true
	case "open":
		if s.now().Sub(s.openedAt) >= s.cfg.Cooldown {
			s.state = "half_open"
			s.halfOpenInFlight = 1
			return true
		}
		return false
	case "half_open":
		if s.halfOpenInFlight >= s.cfg.HalfOpenMaxCalls {
			return false
		}
		s.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (s *ProtectedStore) afterRequest(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == "half_open" && s.halfOpenInFlight > 0 {
		s.halfOpenInFlight--
	}

	if err == nil {
		s.consecutiveFailures = 0
		s.state = "closed"
		return
	}

	s.consecutiveFailures++

	// a failed trial reopens immediately
	if s.state == "half_open" {
		s.state = "open"
		s.openedAt = s.now()
		return
	}

	if s.consecutiveFailures >= s.cfg.FailureThreshold {
		s.state = "open"
		s.openedAt = s.now()
	}
}
