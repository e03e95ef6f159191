// Package events delivers domain events to RabbitMQ. Publishing happens on a
// background queue so a slow or missing broker never fails the request that
// produced the event.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/pkg/config"
	"github.com/noah-isme/exam-scheduler-api/pkg/jobs"
)

// Event types.
const (
	TypeScheduleCommitted = "exam.schedule.committed"
	TypeSeatingGenerated  = "exam.seating.generated"
)

// Event is the JSON body published to the broker. The event type doubles as
// the queue name.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// Publisher sends a single event.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type closer interface {
	Close() error
}

type dialFunc func(url string) (channel, closer, error)

// RabbitPublisher publishes persistent JSON messages on the default exchange,
// declaring a durable queue per event type. The connection is opened lazily
// and dropped after a failure so the next attempt redials.
type RabbitPublisher struct {
	url    string
	dial   dialFunc
	logger *zap.Logger

	mu       sync.Mutex
	ch       channel
	conn     closer
	declared map[string]bool
}

// NewRabbitPublisher creates a publisher for the broker at url.
func NewRabbitPublisher(url string, logger *zap.Logger) *RabbitPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RabbitPublisher{url: url, dial: dialAMQP, logger: logger, declared: make(map[string]bool)}
}

func dialAMQP(url string) (channel, closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, conn, nil
}

// Publish implements Publisher.
func (p *RabbitPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		ch, conn, err := p.dial(p.url)
		if err != nil {
			return err
		}
		p.ch, p.conn = ch, conn
		p.declared = make(map[string]bool)
	}

	if !p.declared[evt.Type] {
		if _, err := p.ch.QueueDeclare(evt.Type, true, false, false, false, nil); err != nil {
			p.reset()
			return fmt.Errorf("declare queue %s: %w", evt.Type, err)
		}
		p.declared[evt.Type] = true
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Type:         evt.Type,
		Timestamp:    evt.OccurredAt,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", evt.Type, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	p.logger.Debug("event published", zap.String("type", evt.Type), zap.String("event_id", evt.ID))
	return nil
}

// Close releases the broker connection.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

func (p *RabbitPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                        { return nil }

// Dispatcher turns Emit calls into queued jobs delivered by a Publisher.
type Dispatcher struct {
	queue     *jobs.Queue
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewDispatcher wires a publisher behind a job queue.
func NewDispatcher(publisher Publisher, cfg config.EventsConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	d := &Dispatcher{publisher: publisher, logger: logger, now: time.Now}
	d.queue = jobs.NewQueue("events", d.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return d
}

// Start begins delivering queued events.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains workers and closes the publisher.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
	if err := d.publisher.Close(); err != nil {
		d.logger.Warn("close event publisher", zap.Error(err))
	}
}

// Emit queues an event of the given type. Failures are logged and returned
// but callers treat them as non-fatal.
func (d *Dispatcher) Emit(_ context.Context, eventType string, payload interface{}) error {
	evt := Event{ID: uuid.NewString(), Type: eventType, OccurredAt: d.now().UTC(), Payload: payload}
	if err := d.queue.Enqueue(jobs.Job{ID: evt.ID, Type: eventType, Payload: evt}); err != nil {
		d.logger.Warn("event not queued", zap.String("type", eventType), zap.Error(err))
		return err
	}
	return nil
}

// Stats exposes the underlying queue counters.
func (d *Dispatcher) Stats() jobs.Stats {
	return d.queue.Stats()
}

func (d *Dispatcher) deliver(ctx context.Context, job jobs.Job) error {
	evt, ok := job.Payload.(Event)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	return d.publisher.Publish(ctx, evt)
}
