package notify

import (
	"github.com/nats-io/nats.go"
)

// subjectPrefix - префикс NATS-сабжектов шины уведомлений
const subjectPrefix = "linkstat.store."

// NATSBus реализует Bus поверх NATS для доставки уведомлений между процессами
type NATSBus struct {
	nc *nats.Conn
}

// NewNATSBus подключается к NATS по заданному адресу
func NewNATSBus(url string) (*NATSBus, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, err
	}
	return &NATSBus{nc: nc}, nil
}

// Publish рассылает payload всем подписчикам ключа во всех процессах
func (b *NATSBus) Publish(key string, payload []byte) error {
	return b.nc.Publish(subjectPrefix+key, payload)
}

// Subscribe регистрирует обработчик уведомлений по ключу
func (b *NATSBus) Subscribe(key string, handler func(payload []byte)) (func(), error) {
	sub, err := b.nc.Subscribe(subjectPrefix+key, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() {
		// ошибки отписки при закрытом соединении неинтересны
		_ = sub.Unsubscribe()
	}, nil
}

// Close закрывает соединение с NATS
func (b *NATSBus) Close() {
	b.nc.Close()
}
