package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"webfinger/internal/identity/models"
	"webfinger/internal/platform/metrics"
	dErrors "webfinger/pkg/domain-errors"
	"webfinger/pkg/platform/sentinel"
)

// Messages are part of the public protocol and surface verbatim in responses.
var (
	ErrMissingParameter = dErrors.New(dErrors.CodeMissingParameter, "Missing resource parameter")
	ErrNotFound         = dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "Resource not found")
)

// LookupRecorder counts lookups by outcome.
type LookupRecorder interface {
	IncrementLookups(outcome string)
}

// Service answers WebFinger lookups against a registry it owns exclusively.
type Service struct {
	registry *models.Registry
	recorder LookupRecorder
	tracer   trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder counts every lookup outcome.
func WithRecorder(r LookupRecorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New returns a Service over registry. The registry must not be modified
// afterwards.
func New(registry *models.Registry, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	s := &Service{
		registry: registry,
		tracer:   otel.Tracer("webfinger/identity"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Lookup returns the record for resource by exact match. It returns
// ErrMissingParameter for an empty resource and ErrNotFound when nothing
// matches.
func (s *Service) Lookup(ctx context.Context, resource string) (models.DiscoveryRecord, error) {
	_, span := s.tracer.Start(ctx, "identity.Lookup")
	defer span.End()

	if resource == "" {
		s.observe(span, metrics.OutcomeMissingParameter)
		return models.DiscoveryRecord{}, ErrMissingParameter
	}

	rec, ok := s.registry.Get(resource)
	if !ok {
		s.observe(span, metrics.OutcomeNotFound)
		return models.DiscoveryRecord{}, ErrNotFound
	}

	s.observe(span, metrics.OutcomeFound)
	return rec, nil
}

// Count returns the registry size for startup logs and metrics only.
func (s *Service) Count() int {
	return s.registry.Len()
}

func (s *Service) observe(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String("webfinger.lookup.outcome", outcome))
	if s.recorder != nil {
		s.recorder.IncrementLookups(outcome)
	}
}
