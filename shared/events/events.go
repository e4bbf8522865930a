package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jl681/order-processing/shared/models"
)

var (
	ErrInvalidTopic    = errors.New("invalid topic")
	ErrInvalidReceiver = errors.New("receiver should be a pointer")
)

// Topic represents the broker destination of an event
type Topic string

func NewTopic(topic string) (Topic, error) {
	if topic == "" {
		return "", ErrInvalidTopic
	}
	return Topic(topic), nil
}

func (t Topic) String() string {
	return string(t)
}

// Metadata represents event metadata
type Metadata map[string]string

func (m Metadata) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m Metadata) Set(key string, value string) {
	m[key] = value
}

func (m Metadata) Clone() Metadata {
	clone := Metadata{}
	for k, v := range m {
		clone[k] = v
	}
	return clone
}

// Event represents a domain event. Key is the partition/ordering key on the
// broker; delivery order is only guaranteed per key.
type Event struct {
	ID        models.ID   `json:"id"`
	Key       models.ID   `json:"key"`
	Topic     Topic       `json:"topic"`
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
	Metadata  Metadata    `json:"metadata"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher publishes events to the message broker
type Publisher interface {
	Publish(ctx context.Context, events ...*Event) error
}

// Handler handles domain events delivered by a subscriber
type Handler interface {
	HandlerID() string
	Handle(ctx context.Context, event *Event) error
}

// NewEvent creates a new domain event on the given topic, keyed by the
// aggregate it concerns.
func NewEvent(topic Topic, key models.ID, eventType string, data interface{}) *Event {
	return &Event{
		ID:        models.GenerateUUID(),
		Key:       key,
		Topic:     topic,
		EventType: eventType,
		Data:      data,
		Metadata:  make(Metadata),
		Timestamp: time.Now(),
	}
}

// WithMetadata adds metadata
func (e *Event) WithMetadata(key string, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(Metadata)
	}
	e.Metadata.Set(key, value)
	return e
}

// MarshalPayload marshals the event payload
func (e *Event) MarshalPayload() (json.RawMessage, error) {
	if b, ok := e.Data.([]byte); ok {
		return b, nil
	}

	if b, ok := e.Data.(json.RawMessage); ok {
		return b, nil
	}

	return json.Marshal(e.Data)
}

// ToJSON converts event to JSON
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON creates event from JSON
func FromJSON(data []byte) (*Event, error) {
	var event Event
	err := json.Unmarshal(data, &event)
	return &event, err
}

// Event Types
const (
	// OrderCreatedEvent announces an accepted order on OrdersTopic.
	OrderCreatedEvent = "ORDER_CREATED"
)

// OrdersTopic carries order lifecycle events keyed by order id.
const OrdersTopic Topic = "orders-topic"
