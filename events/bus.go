package events

import (
	"sync"

	"go.uber.org/zap"
)

// Topics published by the application.
const (
	TopicOrderPlaced      = "orders.placed"
	TopicInventoryChanged = "inventory.changed"
	TopicChatMessage      = "chat.message"
)

type Handler func(payload any)

// Bus is a synchronous in-process publish/subscribe dispatcher. A value is
// injected where needed instead of living as a package singleton so tests can
// create their own.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[int]Handler
	next int
	log  *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{subs: make(map[string]map[int]Handler), log: log}
}

// Subscribe registers a handler for a topic and returns an unsubscribe func.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish invokes every subscriber of the topic in the calling goroutine.
// A panicking subscriber must not break dispatch to the others.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(topic, h, payload)
	}
}

func (b *Bus) dispatch(topic string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event subscriber panicked",
				zap.String("topic", topic), zap.Any("panic", r))
		}
	}()
	h(payload)
}
