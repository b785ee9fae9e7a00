// Package kafka publishes address-changed events to a Kafka topic.
//
// Publishing is best-effort from the caller's point of view: the service
// layer logs and swallows any error returned here, so this package only
// needs to report failure, never to retry.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"clientele/internal/client/models"
	"clientele/pkg/requestcontext"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "client.address-changed"

// addressPayload is the wire shape of one event. Field names match the
// message contract consumed downstream; the recipient is a single display
// string built from surname and given name.
type addressPayload struct {
	ClientID string `json:"clientId"`
	Address  struct {
		Recipient  string `json:"recipient"`
		Line1      string `json:"line1"`
		Line2      string `json:"line2,omitempty"`
		PostalCode string `json:"postalCode"`
		City       string `json:"city"`
	} `json:"address"`
}

// Publisher produces address-changed events.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithTopic overrides the destination topic.
func WithTopic(topic string) Option {
	return func(p *Publisher) {
		if topic != "" {
			p.topic = topic
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher connects a producer to the given brokers.
func NewPublisher(brokers []string, opts ...Option) (*Publisher, error) {
	p := &Publisher{
		topic:  DefaultTopic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(p.topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	p.client = client
	return p, nil
}

// PublishAddressChanged produces one event synchronously. The record key
// is the client id so all events for one client land on one partition in
// order.
func (p *Publisher) PublishAddressChanged(ctx context.Context, event models.AddressChanged) error {
	payload, err := marshalEvent(event)
	if err != nil {
		return err
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.ClientID.String()),
		Value: payload,
	}
	if cid := requestcontext.CorrelationID(ctx); cid != "" {
		record.Headers = append(record.Headers, kgo.RecordHeader{
			Key: "correlation-id", Value: []byte(cid),
		})
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce address-changed event: %w", err)
	}
	p.logger.Debug("address-changed event published",
		"client_id", event.ClientID.String(),
		"topic", p.topic)
	return nil
}

// Close flushes and releases the producer.
func (p *Publisher) Close() {
	p.client.Close()
}

func marshalEvent(event models.AddressChanged) ([]byte, error) {
	var payload addressPayload
	payload.ClientID = event.ClientID.String()
	payload.Address.Recipient = event.Recipient.Surname.String() + " " + event.Recipient.GivenName.String()
	payload.Address.Line1 = event.Address.Line1.String()
	if event.Address.Line2 != nil {
		payload.Address.Line2 = event.Address.Line2.String()
	}
	payload.Address.PostalCode = event.Address.PostalCode.String()
	payload.Address.City = event.Address.City.String()

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal address-changed event: %w", err)
	}
	return data, nil
}
