// Package telemetry содержит диспетчер доставки событий лога на удалённый коллектор.
//
// Доставка выполняется по принципу "best effort": ограниченное число попыток
// с линейной задержкой между ними. Неудача доставки никогда не прерывает
// вызывающее действие — вызывающий получает явный Result и сам решает,
// реагировать ли на исчерпание попыток.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/tempizhere/linkstat/internal/models"
	"go.uber.org/zap"
)

// Значения по умолчанию для диспетчера
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
)

// Result представляет итог доставки события: успешный ответ коллектора
// либо исчерпание всех попыток.
type Result struct {
	Delivered bool
	Response  json.RawMessage
}

// Exhausted возвращает Result для случая, когда все попытки исчерпаны
func Exhausted() Result {
	return Result{Delivered: false}
}

// Config содержит настройки диспетчера
type Config struct {
	// Endpoint - адрес удалённого коллектора. Пустое значение отключает отправку.
	Endpoint string
	// MaxAttempts - максимальное число попыток доставки
	MaxAttempts int
	// BaseDelay - базовая задержка; перед попыткой i+1 диспетчер ждёт BaseDelay*i
	BaseDelay time.Duration
	// Console - логгер для локального зеркалирования событий; nil отключает зеркало
	Console *zap.Logger
}

// Dispatcher доставляет события лога на удалённый коллектор
type Dispatcher struct {
	endpoint    string
	maxAttempts int
	baseDelay   time.Duration
	console     *zap.Logger
	client      *http.Client
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewDispatcher создаёт новый диспетчер
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	return &Dispatcher{
		endpoint:    cfg.Endpoint,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		console:     cfg.Console,
		client:      &http.Client{Timeout: 10 * time.Second},
		sleep:       sleepCtx,
	}
}

// Submit доставляет событие на коллектор. Событие сначала зеркалируется в
// локальный логгер (ровно один раз, независимо от исхода сети), затем
// отправляется до maxAttempts раз с линейной задержкой между попытками.
// Первая успешная попытка завершает доставку. Submit никогда не возвращает
// ошибку: исчерпание попыток выражено в Result.
func (d *Dispatcher) Submit(ctx context.Context, event models.LogEvent) Result {
	d.mirror(event)

	if d.endpoint == "" {
		return Exhausted()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return Exhausted()
	}

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		resp, err := d.post(ctx, body)
		if err == nil {
			return Result{Delivered: true, Response: resp}
		}
		if attempt == d.maxAttempts {
			break
		}
		// линейный backoff: baseDelay * номер попытки
		if err := d.sleep(ctx, d.baseDelay*time.Duration(attempt)); err != nil {
			break
		}
	}
	return Exhausted()
}

// Debug отправляет событие уровня debug от имени серверной части
func (d *Dispatcher) Debug(category models.LogCategory, message string, fields map[string]interface{}) {
	d.fire(models.LevelDebug, category, message, fields)
}

// Info отправляет событие уровня info от имени серверной части
func (d *Dispatcher) Info(category models.LogCategory, message string, fields map[string]interface{}) {
	d.fire(models.LevelInfo, category, message, fields)
}

// Warn отправляет событие уровня warn от имени серверной части
func (d *Dispatcher) Warn(category models.LogCategory, message string, fields map[string]interface{}) {
	d.fire(models.LevelWarn, category, message, fields)
}

// Error отправляет событие уровня error от имени серверной части
func (d *Dispatcher) Error(category models.LogCategory, message string, fields map[string]interface{}) {
	d.fire(models.LevelError, category, message, fields)
}

// Fatal отправляет событие уровня fatal от имени серверной части
func (d *Dispatcher) Fatal(category models.LogCategory, message string, fields map[string]interface{}) {
	d.fire(models.LevelFatal, category, message, fields)
}

// fire создаёт событие с фиксированным уровнем и отправляет его,
// отбрасывая результат доставки
func (d *Dispatcher) fire(level models.LogLevel, category models.LogCategory, message string, fields map[string]interface{}) {
	event, err := models.NewLogEvent(models.OriginBackend, level, category, message)
	if err != nil {
		return
	}
	event.Context = fields
	d.Submit(context.Background(), event)
}

// post выполняет одну попытку доставки и возвращает тело ответа коллектора
func (d *Dispatcher) post(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// дочитываем тело, чтобы соединение вернулось в пул
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// mirror пишет событие в локальный логгер, если зеркалирование включено.
// Зеркалирование не блокирует доставку и не может её провалить.
func (d *Dispatcher) mirror(event models.LogEvent) {
	if d.console == nil {
		return
	}
	fields := []zap.Field{
		zap.String("origin", string(event.Origin)),
		zap.String("category", string(event.Category)),
	}
	if event.Context != nil {
		fields = append(fields, zap.Any("context", event.Context))
	}
	switch event.Level {
	case models.LevelDebug:
		d.console.Debug(event.Message, fields...)
	case models.LevelWarn:
		d.console.Warn(event.Message, fields...)
	case models.LevelError, models.LevelFatal:
		d.console.Error(event.Message, fields...)
	default:
		d.console.Info(event.Message, fields...)
	}
}

// statusError представляет неуспешный HTTP-статус коллектора
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return http.StatusText(e.code)
}

// sleepCtx приостанавливает выполнение на d с учётом отмены контекста
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
