// Package store содержит синхронизатор состояния поверх одного слота хранилища.
//
// Слот - это единственный ключ внешнего хранилища, в котором лежит
// сериализованное представление всей коллекции. Synced держит текущее
// значение в памяти, пишет изменения в слот насквозь и принимает внешние
// изменения (из других процессов) через шину уведомлений.
package store

import (
	"os"
	"path/filepath"
)

// Slot определяет интерфейс одного именованного слота хранилища
type Slot interface {
	// Load читает содержимое слота; ok=false означает, что слот пуст
	Load() (data []byte, ok bool, err error)
	// Store записывает содержимое слота целиком
	Store(data []byte) error
}

// FileSlot реализует Slot поверх одного файла
type FileSlot struct {
	path string
}

// NewFileSlot создаёт файловый слот, создавая директорию при необходимости
func NewFileSlot(path string) (*FileSlot, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileSlot{path: path}, nil
}

// Load читает файл слота целиком
func (s *FileSlot) Load() ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	return data, true, nil
}

// Store записывает файл слота через временный файл и переименование,
// чтобы читатели не видели частичную запись
func (s *FileSlot) Store(data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
