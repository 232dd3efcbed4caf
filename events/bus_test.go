package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(nil)

	var got []any
	bus.Subscribe("t", func(p any) { got = append(got, p) })
	bus.Subscribe("t", func(p any) { got = append(got, p) })

	bus.Publish("t", 42)
	assert.Equal(t, []any{42, 42}, got)
}

func TestBusTopicIsolation(t *testing.T) {
	bus := NewBus(nil)

	called := false
	bus.Subscribe("a", func(any) { called = true })

	bus.Publish("b", "payload")
	assert.False(t, called)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	unsub := bus.Subscribe("t", func(any) { calls++ })

	bus.Publish("t", nil)
	unsub()
	bus.Publish("t", nil)

	assert.Equal(t, 1, calls)
}

func TestBusSubscriberPanicDoesNotBreakDispatch(t *testing.T) {
	bus := NewBus(nil)

	delivered := 0
	bus.Subscribe("t", func(any) { panic("boom") })
	bus.Subscribe("t", func(any) { delivered++ })
	bus.Subscribe("t", func(any) { delivered++ })

	assert.NotPanics(t, func() { bus.Publish("t", nil) })
	assert.Equal(t, 2, delivered)
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil)
	assert.NotPanics(t, func() { bus.Publish("empty", nil) })
}
