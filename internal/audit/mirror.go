package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/alumniportal/internal/domain/identity"
	"github.com/geocoder89/alumniportal/internal/observability"
)

// Mirror copies created identities into the relational audit table on
// detached goroutines. Callers never wait on it and never see its errors:
// failures go through errs to a single sink goroutine that logs them.
type Mirror struct {
	writer Writer
	log    *slog.Logger
	prom   *observability.Prom
	now    func() time.Time

	writeTimeout time.Duration

	mu       sync.RWMutex
	closed   bool
	inFlight sync.WaitGroup

	errs     chan *identity.MirrorError
	sinkDone chan struct{}
}

type MirrorOption func(*Mirror)

func WithProm(p *observability.Prom) MirrorOption {
	return func(m *Mirror) { m.prom = p }
}

func WithClock(now func() time.Time) MirrorOption {
	return func(m *Mirror) { m.now = now }
}

// WithWriteTimeout bounds a single insert, including time spent waiting
// for a pooled connection.
func WithWriteTimeout(d time.Duration) MirrorOption {
	return func(m *Mirror) {
		if d > 0 {
			m.writeTimeout = d
		}
	}
}

func NewMirror(writer Writer, log *slog.Logger, opts ...MirrorOption) *Mirror {
	if log == nil {
		log = slog.Default()
	}

	m := &Mirror{
		writer:       writer,
		log:          log,
		now:          time.Now,
		writeTimeout: 5 * time.Second,
		errs:         make(chan *identity.MirrorError, 64),
		sinkDone:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	go m.sink()

	return m
}

// Mirror dispatches the audit insert for i and returns immediately.
func (m *Mirror) Mirror(i identity.Identity) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		m.log.Warn("mirror closed, dropping audit copy", "identity_id", i.ID)
		m.observe("dropped")
		return
	}
	m.inFlight.Add(1)
	m.mu.RUnlock()

	go m.write(i)
}

func (m *Mirror) write(i identity.Identity) {
	defer m.inFlight.Done()

	defer func() {
		if r := recover(); r != nil {
			m.errs <- &identity.MirrorError{IdentityID: i.ID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	// not tied to any request: the response has usually been sent already
	ctx, cancel := context.WithTimeout(context.Background(), m.writeTimeout)
	defer cancel()

	rowID, err := m.writer.Insert(ctx, RecordFromIdentity(i, m.now()))
	if err != nil {
		m.errs <- &identity.MirrorError{IdentityID: i.ID, Err: err}
		return
	}

	m.observe("ok")
	m.log.Debug("identity mirrored", "identity_id", i.ID, "audit_row_id", rowID)
}

func (m *Mirror) sink() {
	defer close(m.sinkDone)

	for err := range m.errs {
		result := "error"
		if errors.Is(err, ErrCircuitOpen) {
			result = "rejected"
		}
		m.observe(result)

		m.log.Error("audit mirror write failed",
			"identity_id", err.IdentityID,
			"result", result,
			"err", err.Err,
		)
	}
}

func (m *Mirror) observe(result string) {
	if m.prom != nil {
		m.prom.ObserveMirror(result)
	}
}

// Close stops accepting new writes and waits for in-flight ones, bounded
// by ctx. Once it returns nil every failure has been logged.
func (m *Mirror) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// stragglers may still send on errs, so it stays open
		return fmt.Errorf("mirror close: %w", ctx.Err())
	}

	close(m.errs)

	select {
	case <-m.sinkDone:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mirror close: %w", ctx.Err())
	}
}
