package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()

	var got []string
	unsub, err := bus.Subscribe("urls", func(payload []byte) {
		got = append(got, string(payload))
	})
	assert.NoError(t, err)

	assert.NoError(t, bus.Publish("urls", []byte("first")))
	assert.NoError(t, bus.Publish("urls", []byte("second")))
	assert.Equal(t, []string{"first", "second"}, got)

	// Чужой ключ не доставляется
	assert.NoError(t, bus.Publish("other", []byte("stray")))
	assert.Len(t, got, 2)

	// После отписки уведомления не приходят
	unsub()
	assert.NoError(t, bus.Publish("urls", []byte("third")))
	assert.Len(t, got, 2)
}

func TestMemoryBus_MultipleSubscribers(t *testing.T) {
	bus := NewMemoryBus()

	var first, second int
	_, err := bus.Subscribe("urls", func([]byte) { first++ })
	assert.NoError(t, err)
	unsub, err := bus.Subscribe("urls", func([]byte) { second++ })
	assert.NoError(t, err)

	assert.NoError(t, bus.Publish("urls", []byte("v")))
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)

	unsub()
	assert.NoError(t, bus.Publish("urls", []byte("v")))
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, second, "Unsubscribed handler should not be invoked")
}

func TestMemoryBus_UnsubscribeTwice(t *testing.T) {
	bus := NewMemoryBus()

	unsub, err := bus.Subscribe("urls", func([]byte) {})
	assert.NoError(t, err)

	// Повторная отписка не должна паниковать
	unsub()
	unsub()
	assert.NoError(t, bus.Publish("urls", []byte("v")))
}
