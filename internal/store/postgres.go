package store

import (
	"database/sql"

	// драйвер pgx для database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Database определяет интерфейс для работы с базой данных
type Database interface {
	// Ping проверяет соединение с базой данных
	Ping() error
	// Close закрывает соединение с базой данных
	Close() error
	// Exec выполняет SQL-команду без возврата результатов
	Exec(query string, args ...interface{}) (sql.Result, error)
	// QueryRow выполняет SQL-запрос и возвращает одну строку результата
	QueryRow(query string, args ...interface{}) *sql.Row
}

// DB представляет подключение к базе данных
type DB struct {
	conn *sql.DB
}

// NewDB открывает подключение к PostgreSQL и создаёт таблицу слотов.
// Пустой DSN означает, что база не настроена.
func NewDB(dsn string) (Database, error) {
	if dsn == "" {
		return nil, nil
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	_, err = conn.Exec(`
        CREATE TABLE IF NOT EXISTS slots (
            key VARCHAR(64) PRIMARY KEY,
            value TEXT NOT NULL,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// Ping проверяет соединение с базой данных
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close закрывает соединение с базой данных
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Exec выполняет SQL-запрос с аргументами
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// QueryRow выполняет SQL-запрос и возвращает одну строку
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// PostgresSlot реализует Slot поверх одной строки таблицы slots
type PostgresSlot struct {
	db  Database
	key string
}

// NewPostgresSlot создаёт слот с заданным ключом
func NewPostgresSlot(db Database, key string) *PostgresSlot {
	return &PostgresSlot{db: db, key: key}
}

// Load читает значение слота
func (s *PostgresSlot) Load() ([]byte, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM slots WHERE key = $1", s.key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Store записывает значение слота целиком
func (s *PostgresSlot) Store(data []byte) error {
	_, err := s.db.Exec(`
        INSERT INTO slots (key, value, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
        ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = CURRENT_TIMESTAMP
    `, s.key, string(data))
	return err
}
