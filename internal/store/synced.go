package store

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/tempizhere/linkstat/internal/notify"
	"go.uber.org/zap"
)

// envelope - формат уведомления об изменении слота. Origin позволяет
// контексту отличать собственные записи от чужих.
type envelope struct {
	Origin string          `json:"origin"`
	Value  json.RawMessage `json:"value"`
}

// Synced связывает значение типа T в памяти с одним слотом хранилища.
// В пределах своего процесса Synced - единственный писатель слота;
// записи других процессов приходят как уведомления через шину и
// перезаписывают значение в памяти.
type Synced[T any] struct {
	key     string
	slot    Slot
	bus     notify.Bus
	logger  *zap.Logger
	origin  string
	mu      sync.RWMutex
	current T
	initial T
	unsub   func()
}

// NewSynced создаёт синхронизатор для ключа key с начальным значением initial.
// Если слот пуст или содержит неразбираемые данные, слот засевается initial.
func NewSynced[T any](key string, initial T, slot Slot, bus notify.Bus, logger *zap.Logger) (*Synced[T], error) {
	s := &Synced[T]{
		key:     key,
		slot:    slot,
		bus:     bus,
		logger:  logger,
		origin:  uuid.NewString(),
		current: initial,
		initial: initial,
	}

	data, ok, err := slot.Load()
	if err != nil {
		return nil, err
	}
	if ok {
		var value T
		if err := json.Unmarshal(data, &value); err != nil {
			// Повреждённые данные не считаются фатальными: слот
			// пересевается начальным значением
			logger.Warn("Unparsable slot content, falling back to initial value",
				zap.String("key", key), zap.Error(err))
			ok = false
		} else {
			s.current = value
		}
	}
	if !ok {
		data, err := s.writeSlot(initial)
		if err != nil {
			return nil, err
		}
		s.publish(data)
	}

	unsub, err := bus.Subscribe(key, s.onNotify)
	if err != nil {
		return nil, err
	}
	s.unsub = unsub
	return s, nil
}

// Get возвращает текущее значение
func (s *Synced[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update применяет f к текущему значению, записывает результат в слот и
// только затем делает его текущим. Запись в слот и обновление памяти
// выполняются синхронно под одной блокировкой; уведомление публикуется
// уже после её освобождения, чтобы синхронная доставка шины не могла
// пересечься с блокировкой другого экземпляра.
func (s *Synced[T]) Update(f func(T) T) error {
	s.mu.Lock()
	next := f(s.current)
	data, err := s.writeSlot(next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = next
	s.mu.Unlock()

	s.publish(data)
	return nil
}

// Set записывает новое значение, игнорируя предыдущее
func (s *Synced[T]) Set(value T) error {
	return s.Update(func(T) T { return value })
}

// Close освобождает подписку на шину уведомлений
func (s *Synced[T]) Close() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}

// writeSlot сериализует значение и пишет его в слот, возвращая
// сериализованное представление для последующей публикации
func (s *Synced[T]) writeSlot(value T) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if err := s.slot.Store(data); err != nil {
		return nil, err
	}
	return data, nil
}

// publish рассылает уведомление об изменении слота. Вызывается без s.mu:
// шина может доставлять уведомления синхронно, и обработчик другого
// экземпляра берёт собственную блокировку.
func (s *Synced[T]) publish(data []byte) {
	env, err := json.Marshal(envelope{Origin: s.origin, Value: data})
	if err != nil {
		s.logger.Warn("Failed to encode slot notification", zap.String("key", s.key), zap.Error(err))
		return
	}
	if err := s.bus.Publish(s.key, env); err != nil {
		// недоставленное уведомление не отменяет уже выполненную запись
		s.logger.Warn("Failed to publish slot change", zap.String("key", s.key), zap.Error(err))
	}
}

// onNotify применяет внешнее изменение слота. Собственные записи уже
// отражены в памяти и пропускаются.
func (s *Synced[T]) onNotify(payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		s.logger.Warn("Unparsable slot notification", zap.String("key", s.key), zap.Error(err))
		return
	}
	if env.Origin == s.origin {
		return
	}

	var value T
	if err := json.Unmarshal(env.Value, &value); err != nil {
		// чужие повреждённые данные откатывают значение к начальному
		s.logger.Warn("Unparsable external slot value, falling back to initial value",
			zap.String("key", s.key), zap.Error(err))
		value = s.initial
	}

	s.mu.Lock()
	s.current = value
	s.mu.Unlock()
}
