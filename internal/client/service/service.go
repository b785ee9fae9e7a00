// Package service orchestrates the client knowledge use-cases: it composes
// the store, the address-validation gateway and the event publisher into
// atomic, traceable mutations.
//
// Every use-case follows the same ordering guarantee: existence check,
// then validation, then persistence, then event publication. A rejected
// validation or a missing record aborts before any write, so no partial
// state is ever visible to the store.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"clientele/internal/addressing/gateway"
	clientmetrics "clientele/internal/client/metrics"
	"clientele/internal/client/models"
	id "clientele/pkg/domain"
	dErrors "clientele/pkg/domain-errors"
	"clientele/pkg/requestcontext"
)

// ClientStore is the persistence collaborator. Each call is atomic: either
// the full record is stored or the prior record is unchanged.
type ClientStore interface {
	List(ctx context.Context) ([]models.Client, error)
	Find(ctx context.Context, clientID id.ClientID) (models.Client, error)
	Persist(ctx context.Context, client models.Client) (models.Client, error)
	Delete(ctx context.Context, clientID id.ClientID) error
}

// AddressValidator answers whether a postal code and city are consistent.
// Satisfied by the addressing gateway.
type AddressValidator interface {
	Validate(ctx context.Context, postalCode, city string) gateway.Outcome
}

// EventPublisher is the best-effort notification sink. Failures are logged
// and swallowed by this service, never surfaced to the caller.
type EventPublisher interface {
	PublishAddressChanged(ctx context.Context, event models.AddressChanged) error
}

// Service implements the client use-cases.
type Service struct {
	store     ClientStore
	validator AddressValidator
	events    EventPublisher
	logger    *slog.Logger
	metrics   *clientmetrics.Metrics
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithEventPublisher attaches the address-changed event sink. Without one,
// events are silently skipped.
func WithEventPublisher(events EventPublisher) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches mutation metrics.
func WithMetrics(m *clientmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates the service over its collaborators.
func New(store ClientStore, validator AddressValidator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: validator,
		logger:    slog.Default(),
		tracer:    otel.Tracer("clientele/client/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all client records.
func (s *Service) List(ctx context.Context) ([]models.Client, error) {
	return s.store.List(ctx)
}

// Get returns one client record.
func (s *Service) Get(ctx context.Context, clientID id.ClientID) (models.Client, error) {
	return s.store.Find(ctx, clientID)
}

// Create registers a new client record. The address is validated through
// the gateway, a fresh id is generated, and the address event is always
// published: a create always establishes a new address.
func (s *Service) Create(ctx context.Context, newData models.Client) (models.Client, error) {
	ctx, span := s.startSpan(ctx, "client.Create")
	defer span.End()

	if outcome := s.validator.Validate(ctx, newData.Address.PostalCode.String(), newData.Address.City.String()); outcome.Blocks() {
		s.rejected(ctx, "invalid_address", id.ClientID{}, "create rejected, address is invalid")
		return models.Client{}, dErrors.New(dErrors.CodeInvalidAddress, "postal code and city do not match")
	}

	record := newData.WithID(id.NewClientID())
	saved, err := s.store.Persist(persistContext(ctx), record)
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist new client")
	}
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.logger.Info("client created",
		"client_id", saved.ID.String(),
		"correlation_id", requestcontext.CorrelationID(ctx))

	s.publishAddressChanged(ctx, saved)
	return saved, nil
}

// Replace atomically swaps the whole record for an existing client.
//
// The identity is immutable: the persisted record always carries the id of
// the existing record, whatever ids newData carries. The address-changed
// event fires only when the persisted address differs from the prior one,
// compared before the write against the pre-update value.
func (s *Service) Replace(ctx context.Context, clientID id.ClientID, newData models.Client) (models.Client, error) {
	ctx, span := s.startSpan(ctx, "client.Replace",
		attribute.String("client_id", clientID.String()))
	defer span.End()

	existing, err := s.store.Find(ctx, clientID)
	if err != nil {
		return models.Client{}, s.findError(ctx, clientID, err)
	}

	if outcome := s.validator.Validate(ctx, newData.Address.PostalCode.String(), newData.Address.City.String()); outcome.Blocks() {
		s.rejected(ctx, "invalid_address", clientID, "replace rejected, address is invalid")
		return models.Client{}, dErrors.New(dErrors.CodeInvalidAddress, "postal code and city do not match")
	}

	addressChanged := !existing.Address.Equal(newData.Address)

	saved, err := s.store.Persist(persistContext(ctx), newData.WithID(existing.ID))
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist client")
	}
	if s.metrics != nil {
		s.metrics.IncrementUpdated()
	}
	s.logger.Info("client replaced",
		"client_id", saved.ID.String(),
		"address_changed", addressChanged,
		"correlation_id", requestcontext.CorrelationID(ctx))

	if addressChanged {
		s.publishAddressChanged(ctx, saved)
	}
	return saved, nil
}

// ChangeAddress replaces only the address of an existing client. The event
// is always published after a successful persist: the endpoint's sole
// purpose is an address change.
func (s *Service) ChangeAddress(ctx context.Context, clientID id.ClientID, addr models.Address) (models.Client, error) {
	ctx, span := s.startSpan(ctx, "client.ChangeAddress",
		attribute.String("client_id", clientID.String()))
	defer span.End()

	existing, err := s.store.Find(ctx, clientID)
	if err != nil {
		return models.Client{}, s.findError(ctx, clientID, err)
	}

	if outcome := s.validator.Validate(ctx, addr.PostalCode.String(), addr.City.String()); outcome.Blocks() {
		s.rejected(ctx, "invalid_address", clientID, "address change rejected, address is invalid")
		return models.Client{}, dErrors.New(dErrors.CodeInvalidAddress, "postal code and city do not match")
	}

	saved, err := s.store.Persist(persistContext(ctx), existing.WithAddress(addr))
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist client")
	}
	if s.metrics != nil {
		s.metrics.IncrementUpdated()
	}
	s.logger.Info("client address changed",
		"client_id", saved.ID.String(),
		"correlation_id", requestcontext.CorrelationID(ctx))

	s.publishAddressChanged(ctx, saved)
	return saved, nil
}

// ChangeFamilySituation replaces the family situation and children count.
// No external validation and no event: family-situation changes never
// touch the address.
func (s *Service) ChangeFamilySituation(ctx context.Context, clientID id.ClientID, situation models.FamilySituation, children models.ChildrenCount) (models.Client, error) {
	ctx, span := s.startSpan(ctx, "client.ChangeFamilySituation",
		attribute.String("client_id", clientID.String()))
	defer span.End()

	existing, err := s.store.Find(ctx, clientID)
	if err != nil {
		return models.Client{}, s.findError(ctx, clientID, err)
	}

	saved, err := s.store.Persist(persistContext(ctx), existing.WithFamilySituation(situation, children))
	if err != nil {
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist client")
	}
	if s.metrics != nil {
		s.metrics.IncrementUpdated()
	}
	s.logger.Info("client family situation changed",
		"client_id", saved.ID.String(),
		"correlation_id", requestcontext.CorrelationID(ctx))
	return saved, nil
}

// Delete removes a client record.
func (s *Service) Delete(ctx context.Context, clientID id.ClientID) error {
	ctx, span := s.startSpan(ctx, "client.Delete",
		attribute.String("client_id", clientID.String()))
	defer span.End()

	if err := s.store.Delete(persistContext(ctx), clientID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete client")
	}
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	s.logger.Info("client deleted",
		"client_id", clientID.String(),
		"correlation_id", requestcontext.CorrelationID(ctx))
	return nil
}

// startSpan opens a tracing span and guarantees the context carries a
// correlation id for everything downstream of this call.
func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx = ensureCorrelationID(ctx)
	attrs = append(attrs, attribute.String("correlation_id", requestcontext.CorrelationID(ctx)))
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// findError normalizes store lookup failures: absence maps to not-found,
// anything else is an internal store failure.
func (s *Service) findError(ctx context.Context, clientID id.ClientID, err error) error {
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		s.rejected(ctx, "not_found", clientID, "update rejected, client not found")
		return dErrors.New(dErrors.CodeNotFound, "client not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "find client")
}

func (s *Service) rejected(ctx context.Context, reason string, clientID id.ClientID, msg string) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(reason)
	}
	s.logger.Warn(msg,
		"client_id", clientID.String(),
		"correlation_id", requestcontext.CorrelationID(ctx))
}

// publishAddressChanged emits the event best-effort. A publish failure is
// out-of-band: it is logged and counted but never undoes the persisted
// write nor converts into a caller-visible error.
func (s *Service) publishAddressChanged(ctx context.Context, saved models.Client) {
	if s.events == nil {
		return
	}
	event := models.AddressChanged{
		ClientID:  saved.ID,
		Recipient: models.RecipientOf(saved),
		Address:   saved.Address,
	}
	if err := s.events.PublishAddressChanged(ctx, event); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementEventFailure()
		}
		s.logger.Error("address-changed event publish failed",
			"client_id", saved.ID.String(),
			"error", err,
			"correlation_id", requestcontext.CorrelationID(ctx))
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementEventSent()
	}
}

// ensureCorrelationID generates an id when the caller did not provide one,
// so every invocation is traceable end to end.
func ensureCorrelationID(ctx context.Context) context.Context {
	if requestcontext.CorrelationID(ctx) != "" {
		return ctx
	}
	return requestcontext.WithCorrelationID(ctx, uuid.NewString())
}

// persistContext detaches the write from caller cancellation. Once
// persistence starts it runs to completion or explicit failure; a client
// disconnect must not abandon a write mid-flight. Context values (the
// correlation id in particular) are preserved.
func persistContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
