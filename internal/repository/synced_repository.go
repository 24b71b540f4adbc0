package repository

import (
	"time"

	"github.com/tempizhere/linkstat/internal/models"
	"github.com/tempizhere/linkstat/internal/notify"
	"github.com/tempizhere/linkstat/internal/store"
	"go.uber.org/zap"
)

// slotKey - ключ слота хранилища с коллекцией коротких ссылок
const slotKey = "urls"

// SyncedRepository реализует Repository поверх синхронизируемого слота.
// В пределах процесса репозиторий - единственный писатель слота; записи
// других процессов приходят через шину уведомлений и становятся видимыми
// при следующем чтении.
type SyncedRepository struct {
	synced *store.Synced[[]models.ShortURL]
	logger *zap.Logger
}

// NewSyncedRepository создаёт репозиторий над слотом slot с шиной bus
func NewSyncedRepository(slot store.Slot, bus notify.Bus, logger *zap.Logger) (*SyncedRepository, error) {
	synced, err := store.NewSynced(slotKey, []models.ShortURL{}, slot, bus, logger)
	if err != nil {
		return nil, err
	}
	return &SyncedRepository{synced: synced, logger: logger}, nil
}

// Close освобождает подписку на шину уведомлений
func (r *SyncedRepository) Close() {
	r.synced.Close()
}

// Save сохраняет новую короткую ссылку. Уникальность кода перепроверяется
// внутри Update по последнему синхронизированному значению: код, занятый
// другим процессом после генерации, даёт ErrCodeTaken, а не дубликат.
func (r *SyncedRepository) Save(u models.ShortURL) error {
	var saveErr error
	err := r.synced.Update(func(urls []models.ShortURL) []models.ShortURL {
		for _, existing := range urls {
			if existing.ShortCode == u.ShortCode {
				saveErr = ErrCodeTaken
				return urls
			}
		}
		// Новый срез вместо append в общий: прежнее значение могли
		// получить конкурентные читатели
		next := make([]models.ShortURL, len(urls)+1)
		copy(next, urls)
		next[len(urls)] = u
		return next
	})
	if err != nil {
		r.logger.Error("Failed to save short URL", zap.String("short_code", u.ShortCode), zap.Error(err))
		return err
	}
	return saveErr
}

// Get возвращает ссылку по коду
func (r *SyncedRepository) Get(code string) (models.ShortURL, bool) {
	for _, u := range r.synced.Get() {
		if u.ShortCode == code {
			return u, true
		}
	}
	return models.ShortURL{}, false
}

// GetAll возвращает копию коллекции в порядке создания
func (r *SyncedRepository) GetAll() []models.ShortURL {
	urls := r.synced.Get()
	out := make([]models.ShortURL, len(urls))
	copy(out, urls)
	return out
}

// GetActive возвращает неистёкшие на момент now ссылки
func (r *SyncedRepository) GetActive(now time.Time) []models.ShortURL {
	return activeOf(r.synced.Get(), now)
}

// AppendClick добавляет запись о переходе и увеличивает счётчик кликов
// одним атомарным обновлением слота. Обновление строит новый срез и новую
// копию изменяемого элемента: прежнее значение остаётся неизменным для
// конкурентных читателей, а при ошибке записи слота память не расходится
// со слотом.
func (r *SyncedRepository) AppendClick(code string, click models.ClickData) error {
	var appendErr error = ErrNotFound
	err := r.synced.Update(func(urls []models.ShortURL) []models.ShortURL {
		for i := range urls {
			if urls[i].ShortCode != code {
				continue
			}
			next := make([]models.ShortURL, len(urls))
			copy(next, urls)
			u := next[i]
			u.ClickData = append(append([]models.ClickData(nil), u.ClickData...), click)
			u.Clicks = len(u.ClickData)
			next[i] = u
			appendErr = nil
			return next
		}
		return urls
	})
	if err != nil {
		r.logger.Error("Failed to append click", zap.String("short_code", code), zap.Error(err))
		return err
	}
	return appendErr
}

// GetByUserID возвращает активные ссылки пользователя
func (r *SyncedRepository) GetByUserID(userID string, now time.Time) []models.ShortURL {
	var out []models.ShortURL
	for _, u := range activeOf(r.synced.Get(), now) {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	return out
}

// DeleteExpired удаляет истёкшие ссылки пользователя
func (r *SyncedRepository) DeleteExpired(userID string, now time.Time) (int, error) {
	removed := 0
	err := r.synced.Update(func(urls []models.ShortURL) []models.ShortURL {
		kept := make([]models.ShortURL, 0, len(urls))
		for _, u := range urls {
			if u.UserID == userID && u.IsExpired(now) {
				removed++
				continue
			}
			kept = append(kept, u)
		}
		return kept
	})
	if err != nil {
		r.logger.Error("Failed to delete expired URLs", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return removed, nil
}

// Clear очищает коллекцию
func (r *SyncedRepository) Clear() {
	if err := r.synced.Set([]models.ShortURL{}); err != nil {
		r.logger.Error("Failed to clear repository", zap.Error(err))
	}
}

// Stats возвращает сводные показатели коллекции
func (r *SyncedRepository) Stats() (int, int, int) {
	return statsOf(r.synced.Get())
}
