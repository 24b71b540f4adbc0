// Package repository содержит хранилище коллекции коротких ссылок.
package repository

import (
	"errors"
	"time"

	"github.com/tempizhere/linkstat/internal/models"
)

// Ошибки хранилища
var (
	// ErrCodeTaken возвращается при попытке сохранить уже занятый короткий код
	ErrCodeTaken = errors.New("short code already taken")
	// ErrNotFound возвращается, когда короткий код отсутствует в коллекции
	ErrNotFound = errors.New("short URL not found")
)

// Repository определяет интерфейс для работы с коллекцией коротких ссылок.
// Истёкшие ссылки отфильтровываются при чтении активных представлений и
// не удаляются из хранилища до явной очистки.
type Repository interface {
	// Save сохраняет новую короткую ссылку; занятый код даёт ErrCodeTaken
	Save(u models.ShortURL) error
	// Get возвращает ссылку по коду и флаг существования
	Get(code string) (models.ShortURL, bool)
	// GetAll возвращает всю коллекцию в порядке создания
	GetAll() []models.ShortURL
	// GetActive возвращает неистёкшие на момент now ссылки
	GetActive(now time.Time) []models.ShortURL
	// AppendClick добавляет запись о переходе и увеличивает счётчик кликов
	AppendClick(code string, click models.ClickData) error
	// GetByUserID возвращает активные ссылки пользователя
	GetByUserID(userID string, now time.Time) []models.ShortURL
	// DeleteExpired удаляет истёкшие ссылки пользователя, возвращает число удалённых
	DeleteExpired(userID string, now time.Time) (int, error)
	// Clear очищает все данные в хранилище
	Clear()
	// Stats возвращает сводные показатели: ссылки, пользователи, клики
	Stats() (urls, users, clicks int)
}

// activeOf отбирает неистёкшие на момент now ссылки, сохраняя порядок
func activeOf(all []models.ShortURL, now time.Time) []models.ShortURL {
	var active []models.ShortURL
	for _, u := range all {
		if !u.IsExpired(now) {
			active = append(active, u)
		}
	}
	return active
}

// statsOf считает сводные показатели коллекции
func statsOf(all []models.ShortURL) (urls, users, clicks int) {
	seen := make(map[string]struct{})
	for _, u := range all {
		urls++
		clicks += u.Clicks
		if u.UserID != "" {
			seen[u.UserID] = struct{}{}
		}
	}
	return urls, len(seen), clicks
}
