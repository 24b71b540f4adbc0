// Package notify содержит шину уведомлений об изменениях значений по ключу.
//
// Шина абстрагирует способ доставки уведомлений между контекстами исполнения:
// внутри одного процесса используется MemoryBus, между процессами - NATSBus.
package notify

import "sync"

// Bus определяет интерфейс шины уведомлений
type Bus interface {
	// Publish рассылает payload всем подписчикам ключа
	Publish(key string, payload []byte) error
	// Subscribe регистрирует обработчик уведомлений по ключу и
	// возвращает функцию отписки
	Subscribe(key string, handler func(payload []byte)) (func(), error)
}

// MemoryBus реализует Bus внутри одного процесса
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[string]map[int]func(payload []byte)
	next int
}

// NewMemoryBus создаёт новую шину в памяти
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subs: make(map[string]map[int]func(payload []byte)),
	}
}

// Publish синхронно доставляет payload всем подписчикам ключа
func (b *MemoryBus) Publish(key string, payload []byte) error {
	b.mu.RLock()
	handlers := make([]func([]byte), 0, len(b.subs[key]))
	for _, h := range b.subs[key] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
	return nil
}

// Subscribe регистрирует обработчик и возвращает функцию отписки
func (b *MemoryBus) Subscribe(key string, handler func(payload []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[key] == nil {
		b.subs[key] = make(map[int]func(payload []byte))
	}
	id := b.next
	b.next++
	b.subs[key][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[key], id)
	}, nil
}
