package event

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/dshills/cmdline/internal/event/topic"
)

// HandlerFunc receives delivered events.
type HandlerFunc func(env Envelope) error

// Publisher is the narrow interface components use to emit events.
type Publisher interface {
	Publish(event any) error
}

// Subscription is a registered handler for a topic pattern.
type Subscription struct {
	id      string
	pattern topic.Topic
	fn      HandlerFunc
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Topic returns the subscribed topic pattern.
func (s *Subscription) Topic() topic.Topic {
	return s.pattern
}

// Stats holds bus counters.
type Stats struct {
	EventsPublished uint64
	EventsDelivered uint64
	HandlerErrors   uint64
	Subscriptions   int
}

// Bus delivers events synchronously to matching subscribers, in
// subscription order, before Publish returns.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription

	published atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for all events whose topic matches pattern.
func (b *Bus) Subscribe(pattern topic.Topic, fn HandlerFunc) (*Subscription, error) {
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	if fn == nil {
		return nil, ErrNilHandler
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		fn:      fn,
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers event to every matching subscriber. Handler failures do
// not stop delivery to the remaining subscribers; they are collected into
// the returned error.
func (b *Bus) Publish(event any) error {
	env, ok := ToEnvelope(event)
	if !ok {
		return ErrInvalidEvent
	}
	if !env.Topic.IsValid() || env.Topic.IsWildcard() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, env.Topic)
	}

	b.published.Add(1)

	b.mu.RLock()
	subs := make([]*Subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	var result *multierror.Error
	for _, sub := range subs {
		if !env.Topic.Matches(sub.pattern) {
			continue
		}
		if err := b.deliver(sub, env); err != nil {
			b.failed.Add(1)
			result = multierror.Append(result, &HandlerError{
				SubscriptionID: sub.id,
				Topic:          env.Topic.String(),
				Err:            err,
			})
			continue
		}
		b.delivered.Add(1)
	}
	return result.ErrorOrNil()
}

func (b *Bus) deliver(sub *Subscription, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return sub.fn(env)
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		EventsPublished: b.published.Load(),
		EventsDelivered: b.delivered.Load(),
		HandlerErrors:   b.failed.Load(),
		Subscriptions:   n,
	}
}
