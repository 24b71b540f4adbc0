package repository

import (
	"sync"
	"time"

	"github.com/tempizhere/linkstat/internal/models"
)

// MemoryRepository реализует интерфейс Repository в памяти процесса
type MemoryRepository struct {
	mu   sync.RWMutex
	urls []models.ShortURL
}

// NewMemoryRepository создаёт новый экземпляр MemoryRepository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Save сохраняет новую короткую ссылку
func (r *MemoryRepository) Save(u models.ShortURL) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.urls {
		if existing.ShortCode == u.ShortCode {
			return ErrCodeTaken
		}
	}
	r.urls = append(r.urls, u)
	return nil
}

// Get возвращает ссылку по коду
func (r *MemoryRepository) Get(code string) (models.ShortURL, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.urls {
		if u.ShortCode == code {
			return u, true
		}
	}
	return models.ShortURL{}, false
}

// GetAll возвращает всю коллекцию в порядке создания
func (r *MemoryRepository) GetAll() []models.ShortURL {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ShortURL, len(r.urls))
	copy(out, r.urls)
	return out
}

// GetActive возвращает неистёкшие на момент now ссылки
func (r *MemoryRepository) GetActive(now time.Time) []models.ShortURL {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return activeOf(r.urls, now)
}

// AppendClick добавляет запись о переходе к ссылке
func (r *MemoryRepository) AppendClick(code string, click models.ClickData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.urls {
		if r.urls[i].ShortCode == code {
			r.urls[i].ClickData = append(r.urls[i].ClickData, click)
			r.urls[i].Clicks = len(r.urls[i].ClickData)
			return nil
		}
	}
	return ErrNotFound
}

// GetByUserID возвращает активные ссылки пользователя
func (r *MemoryRepository) GetByUserID(userID string, now time.Time) []models.ShortURL {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.ShortURL
	for _, u := range activeOf(r.urls, now) {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	return out
}

// DeleteExpired удаляет истёкшие ссылки пользователя
func (r *MemoryRepository) DeleteExpired(userID string, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.urls[:0]
	removed := 0
	for _, u := range r.urls {
		if u.UserID == userID && u.IsExpired(now) {
			removed++
			continue
		}
		kept = append(kept, u)
	}
	r.urls = kept
	return removed, nil
}

// Clear очищает хранилище
func (r *MemoryRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = nil
}

// Stats возвращает сводные показатели коллекции
func (r *MemoryRepository) Stats() (int, int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return statsOf(r.urls)
}
