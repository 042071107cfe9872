// Package notify carries user-facing events out of request handlers.
// Publishing never blocks the caller and delivery failures never reach it.
package notify

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Event is a notification addressed to one user.
type Event struct {
	UserID    primitive.ObjectID
	Type      domain.NotificationType
	Title     string
	Message   string
	Data      map[string]any
	CreatedAt time.Time
}

// Publisher accepts events for asynchronous delivery.
type Publisher interface {
	Publish(Event)
}

// Sink delivers a single event.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// Recorder receives delivery outcomes, typically a metrics.Manager.
type Recorder interface {
	NotificationDelivered(kind string)
	NotificationDropped()
	NotificationFailed()
}

type nopRecorder struct{}

func (nopRecorder) NotificationDelivered(string) {}
func (nopRecorder) NotificationDropped()         {}
func (nopRecorder) NotificationFailed()          {}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) {}

const (
	defaultBufferSize     = 256
	defaultDeliverTimeout = 5 * time.Second
)

// Dispatcher queues events on a bounded channel drained by a single worker.
type Dispatcher struct {
	sink     Sink
	log      *zap.Logger
	recorder Recorder
	timeout  time.Duration

	mu     sync.RWMutex
	closed bool
	events chan Event
	done   chan struct{}
}

// NewDispatcher starts the worker. A nil recorder disables outcome reporting.
func NewDispatcher(sink Sink, bufferSize int, timeout time.Duration, log *zap.Logger, recorder Recorder) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if timeout <= 0 {
		timeout = defaultDeliverTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	d := &Dispatcher{
		sink:     sink,
		log:      log.Named("notify"),
		recorder: recorder,
		timeout:  timeout,
		events:   make(chan Event, bufferSize),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues e, dropping it when the queue is full or the dispatcher is closed.
func (d *Dispatcher) Publish(e Event) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(e, "dispatcher closed")
		return
	}
	select {
	case d.events <- e:
	default:
		d.drop(e, "queue full")
	}
}

func (d *Dispatcher) drop(e Event, reason string) {
	d.recorder.NotificationDropped()
	d.log.Warn("notification dropped",
		zap.String("reason", reason),
		zap.String("type", string(e.Type)),
		zap.String("userId", e.UserID.Hex()),
	)
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.events {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sink.Deliver(ctx, e); err != nil {
		d.recorder.NotificationFailed()
		d.log.Error("notification delivery failed",
			zap.String("type", string(e.Type)),
			zap.String("userId", e.UserID.Hex()),
			zap.Error(err),
		)
		return
	}
	d.recorder.NotificationDelivered(string(e.Type))
}

// Close stops accepting events and waits until queued ones are delivered
// or ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StoreSink persists events into the in-app notification centre.
type StoreSink struct {
	repo repository.NotificationRepository
}

func NewStoreSink(repo repository.NotificationRepository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Deliver(ctx context.Context, e Event) error {
	_, err := s.repo.Create(ctx, &domain.Notification{
		UserID:    e.UserID,
		Type:      e.Type,
		Title:     e.Title,
		Message:   e.Message,
		Data:      e.Data,
		CreatedAt: e.CreatedAt,
	})
	return err
}
