package infrastructure

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/jl681/order-processing/shared/events"
	"github.com/jl681/order-processing/shared/models"
	"github.com/pkg/errors"
)

// SQSEventSubscriber long-polls an SQS queue subscribed to the orders topic
// and dispatches decoded events to a handler. Delivery is at least once: a
// message is deleted only after the handler returns nil, so handlers must be
// idempotent.
type SQSEventSubscriber struct {
	client   *sqs.Client
	queueURL string
	handler  events.Handler
	options  sqsSubscriberOptions
	running  atomic.Bool
	cancel   context.CancelFunc
}

type sqsSubscriberOptions struct {
	workers             int
	maxNumberOfMessages int32
	waitTimeSeconds     int32
	visibilityTimeout   int32
	sleepAfterError     time.Duration
}

// SQSSubscriberOption overrides subscriber defaults
type SQSSubscriberOption func(*sqsSubscriberOptions)

// WithWorkers sets the number of concurrent message handlers
func WithWorkers(workers int) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.workers = workers
	}
}

// NewSQSEventSubscriber creates a subscriber over an existing SQS client
func NewSQSEventSubscriber(client *sqs.Client, queueURL string, handler events.Handler, opts ...SQSSubscriberOption) *SQSEventSubscriber {
	options := sqsSubscriberOptions{
		workers:             4,
		maxNumberOfMessages: 5,
		waitTimeSeconds:     15,
		visibilityTimeout:   30,
		sleepAfterError:     10 * time.Second,
	}

	for _, opt := range opts {
		opt(&options)
	}

	return &SQSEventSubscriber{
		client:   client,
		queueURL: queueURL,
		handler:  handler,
		options:  options,
	}
}

// NewSQSSubscriberAdapter builds a subscriber from ambient AWS config
func NewSQSSubscriberAdapter(queueURL string, handler events.Handler, opts ...SQSSubscriberOption) (*SQSEventSubscriber, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return NewSQSEventSubscriber(sqs.NewFromConfig(cfg), queueURL, handler, opts...), nil
}

// Start launches the receive loop and worker pool. It returns immediately.
func (s *SQSEventSubscriber) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("subscriber already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	messages := make(chan types.Message, s.options.workers)

	for i := 0; i < s.options.workers; i++ {
		go s.worker(ctx, messages)
	}

	go s.receiveLoop(ctx, messages)

	return nil
}

// Close stops the subscriber
func (s *SQSEventSubscriber) Close() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *SQSEventSubscriber) receiveLoop(ctx context.Context, messages chan<- types.Message) {
	defer close(messages)

	for {
		if ctx.Err() != nil {
			return
		}

		output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:              aws.String(s.queueURL),
			MaxNumberOfMessages:   s.options.maxNumberOfMessages,
			WaitTimeSeconds:       s.options.waitTimeSeconds,
			VisibilityTimeout:     s.options.visibilityTimeout,
			MessageAttributeNames: []string{"All"},
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("sqs receive failed: %v", err)
			time.Sleep(s.options.sleepAfterError)
			continue
		}

		for _, message := range output.Messages {
			select {
			case messages <- message:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *SQSEventSubscriber) worker(ctx context.Context, messages <-chan types.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-messages:
			if !ok {
				return
			}
			s.handle(ctx, message)
		}
	}
}

func (s *SQSEventSubscriber) handle(ctx context.Context, message types.Message) {
	event, err := decodeMessage(message)
	if err != nil {
		log.Printf("dropping malformed sqs message %s: %v", aws.ToString(message.MessageId), err)
		s.delete(ctx, message)
		return
	}

	if err := s.handler.Handle(ctx, event); err != nil {
		// Leave the message in the queue; it becomes visible again after
		// the visibility timeout and is redelivered.
		log.Printf("handler %s failed on event %s: %v", s.handler.HandlerID(), event.ID, err)
		return
	}

	s.delete(ctx, message)
}

func (s *SQSEventSubscriber) delete(ctx context.Context, message types.Message) {
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		log.Printf("failed to delete sqs message %s: %v", aws.ToString(message.MessageId), err)
	}
}

// snsEnvelope is the wrapper SNS puts around messages delivered to SQS
type snsEnvelope struct {
	Message string `json:"Message"`
}

// decodeMessage unpacks an SNS-delivered SQS message into a domain event
func decodeMessage(message types.Message) (*events.Event, error) {
	body := aws.ToString(message.Body)

	var envelope snsEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Message != "" {
		body = envelope.Message
	}

	var msg snsMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return nil, errors.Wrap(err, "failed to decode message body")
	}

	topic, err := events.NewTopic(msg.Topic)
	if err != nil {
		return nil, err
	}

	metadata := msg.Metadata
	if metadata == nil {
		metadata = make(events.Metadata)
	}

	return &events.Event{
		ID:        models.ID(msg.ID),
		Key:       models.ID(msg.Key),
		Topic:     topic,
		EventType: msg.EventType,
		Data:      json.RawMessage(msg.Payload),
		Metadata:  metadata,
		Timestamp: msg.Timestamp,
	}, nil
}
