// Package core implements the ripperdoc service: the installation
// transaction, catalog reads, characters and save slots.
package core

import (
	"time"

	"github.com/google/uuid"

	"ripperdoc/internal/blob"
	"ripperdoc/internal/dice"
	"ripperdoc/internal/install"
	"ripperdoc/pkg/domain"
)

// Service exposes the engine operations over a persistent store.
type Service struct {
	store    domain.PersistentStore
	resolver *install.Resolver
	blobs    blob.Store
	logger   Logger
	metrics  MetricsRecorder
	tracer   Tracer
	now      func() time.Time
	newID    func() string
	locks    *keyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the span tracer.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithRoller sets the dice used by the installation resolver.
func WithRoller(r *dice.Roller) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = install.NewResolver(r)
		}
	}
}

// WithClock overrides the time source used for implant and history stamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithIDGenerator overrides implant ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithBlobStore sets the target for save exports.
func WithBlobStore(b blob.Store) Option {
	return func(s *Service) { s.blobs = b }
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		resolver: install.NewResolver(dice.Default()),
		logger:   noopLogger{},
		metrics:  noopMetrics{},
		tracer:   noopTracer{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}
