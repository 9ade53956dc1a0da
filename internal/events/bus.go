// Package events provides the synchronous publish/subscribe bus that connects
// the store with the views.
package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultMaxDepth bounds reentrant emission
const DefaultMaxDepth = 32

// ErrEmitLoop is returned when handlers keep re-emitting past the depth limit
var ErrEmitLoop = errors.New("event emission loop")

// Event is delivered to handlers
type Event struct {
	Name    Name
	Payload any
}

// Handler reacts to an event
type Handler func(ctx context.Context, e Event)

// Matcher decides whether a subscription receives an event
type Matcher interface {
	Match(name Name) bool
}

// Exact matches a single event name
type Exact Name

func (e Exact) Match(name Name) bool {
	return Name(e) == name
}

// Pattern matches every name with the given prefix and suffix, e.g.
// Pattern{Prefix: "order.", Suffix: ":change"} matches "order.address:change".
type Pattern struct {
	Prefix string
	Suffix string
}

func (p Pattern) Match(name Name) bool {
	s := string(name)
	return len(s) >= len(p.Prefix)+len(p.Suffix) &&
		strings.HasPrefix(s, p.Prefix) &&
		strings.HasSuffix(s, p.Suffix)
}

type matchAll struct{}

func (matchAll) Match(Name) bool { return true }

// Subscription identifies a registered handler
type Subscription uint64

type subscription struct {
	id      Subscription
	matcher Matcher
	handler Handler
}

// Bus dispatches events synchronously in subscription order.
//
// Emit is reentrant but not safe for concurrent use; callers serialize their
// dispatches. Each Emit works on a snapshot of the subscriber list, so a
// handler removed by another handler during a dispatch may still run once.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID Subscription

	maxDepth int
	depth    int
	loopErr  error

	logger *zap.Logger
}

// Option configures a Bus
type Option func(*Bus)

// WithMaxDepth overrides the reentrancy limit
func WithMaxDepth(depth int) Option {
	return func(b *Bus) {
		if depth > 0 {
			b.maxDepth = depth
		}
	}
}

// NewBus creates an event bus
func NewBus(logger *zap.Logger, opts ...Option) *Bus {
	b := &Bus{
		maxDepth: DefaultMaxDepth,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for every event accepted by the matcher
func (b *Bus) Subscribe(m Matcher, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, matcher: m, handler: h})
	return b.nextID
}

// On registers a handler for one event name
func (b *Bus) On(name Name, h Handler) Subscription {
	return b.Subscribe(Exact(name), h)
}

// SubscribeAll registers a handler that receives every event
func (b *Bus) SubscribeAll(h Handler) Subscription {
	return b.Subscribe(matchAll{}, h)
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == s {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Emit invokes every matching handler with the payload before returning.
// It returns ErrEmitLoop from the outermost call when nested emissions
// exceeded the depth limit anywhere in the dispatch.
func (b *Bus) Emit(ctx context.Context, name Name, payload any) (err error) {
	if b.depth >= b.maxDepth {
		if b.loopErr == nil {
			b.loopErr = fmt.Errorf("%w: %q nested %d levels deep", ErrEmitLoop, name, b.depth)
			b.logger.Error("Event emission loop detected",
				zap.String("event", string(name)),
				zap.Int("depth", b.depth),
			)
		}
		return b.loopErr
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	// unwinds on handler panics too
	b.depth++
	defer func() {
		b.depth--
		err = b.loopErr
		if b.depth == 0 {
			b.loopErr = nil
		}
	}()

	ev := Event{Name: name, Payload: payload}
	for _, sub := range subs {
		if sub.matcher.Match(name) {
			sub.handler(ctx, ev)
		}
	}
	return nil
}
