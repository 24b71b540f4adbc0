package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tempizhere/linkstat/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// newTestDispatcher создаёт диспетчер с перехватом задержек между попытками
func newTestDispatcher(cfg Config, delays *[]time.Duration) *Dispatcher {
	d := NewDispatcher(cfg)
	d.sleep = func(ctx context.Context, dur time.Duration) error {
		*delays = append(*delays, dur)
		return nil
	}
	return d
}

func mustEvent(t *testing.T, level models.LogLevel) models.LogEvent {
	t.Helper()
	event, err := models.NewLogEvent(models.OriginBackend, level, models.CategoryAPI, "test message")
	assert.NoError(t, err)
	return event
}

func TestSubmit_SuccessOnFirstAttempt(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"accepted"}`))
	}))
	defer server.Close()

	var delays []time.Duration
	d := newTestDispatcher(Config{Endpoint: server.URL}, &delays)

	result := d.Submit(context.Background(), mustEvent(t, models.LevelInfo))

	assert.True(t, result.Delivered)
	assert.JSONEq(t, `{"status":"accepted"}`, string(result.Response))
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "Should stop after first success")
	assert.Empty(t, delays, "No backoff needed on immediate success")
}

func TestSubmit_SuccessOnLastAttempt(t *testing.T) {
	// Первые N-1 попыток падают, последняя успешна
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	var delays []time.Duration
	d := newTestDispatcher(Config{
		Endpoint:    server.URL,
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
	}, &delays)

	result := d.Submit(context.Background(), mustEvent(t, models.LevelWarn))

	assert.True(t, result.Delivered)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts), "Should perform exactly N attempts")

	// Задержки линейные и неубывающие: base*1, base*2
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, delays)
	for i := 1; i < len(delays); i++ {
		assert.GreaterOrEqual(t, delays[i], delays[i-1], "Backoff delays should be nondecreasing")
	}
}

func TestSubmit_AllAttemptsFail(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	var delays []time.Duration
	d := newTestDispatcher(Config{
		Endpoint:    server.URL,
		MaxAttempts: 4,
		BaseDelay:   time.Millisecond,
	}, &delays)

	result := d.Submit(context.Background(), mustEvent(t, models.LevelError))

	assert.False(t, result.Delivered, "Exhausted delivery should not be marked delivered")
	assert.Nil(t, result.Response)
	assert.Equal(t, int32(4), atomic.LoadInt32(&attempts), "Should perform exactly the configured maximum attempts")
	assert.Len(t, delays, 3, "No backoff after the final attempt")
}

func TestSubmit_NetworkError(t *testing.T) {
	// Закрытый сервер симулирует сетевую ошибку
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	var delays []time.Duration
	d := newTestDispatcher(Config{
		Endpoint:    server.URL,
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
	}, &delays)

	result := d.Submit(context.Background(), mustEvent(t, models.LevelInfo))
	assert.False(t, result.Delivered)
}

func TestSubmit_NoEndpointConfigured(t *testing.T) {
	var delays []time.Duration
	d := newTestDispatcher(Config{}, &delays)

	result := d.Submit(context.Background(), mustEvent(t, models.LevelInfo))
	assert.False(t, result.Delivered, "Unset endpoint degrades to exhausted result")
}

func TestSubmit_ConsoleMirror(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	console := zap.New(core)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var delays []time.Duration
	d := newTestDispatcher(Config{
		Endpoint:    server.URL,
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Console:     console,
	}, &delays)

	// Зеркало срабатывает ровно один раз независимо от исхода сети
	d.Submit(context.Background(), mustEvent(t, models.LevelWarn))
	assert.Equal(t, 1, logs.Len(), "Console mirror should fire exactly once per Submit")

	entry := logs.All()[0]
	assert.Equal(t, "test message", entry.Message)
	assert.Equal(t, zap.WarnLevel, entry.Level)
	assert.Equal(t, "backend", entry.ContextMap()["origin"])
	assert.Equal(t, "api", entry.ContextMap()["category"])
}

func TestSubmit_ConsoleMirrorAllLevels(t *testing.T) {
	tests := []struct {
		level models.LogLevel
		want  string
	}{
		{models.LevelDebug, "debug"},
		{models.LevelInfo, "info"},
		{models.LevelWarn, "warn"},
		{models.LevelError, "error"},
		{models.LevelFatal, "error"},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			var delays []time.Duration
			d := newTestDispatcher(Config{Console: zap.New(core)}, &delays)

			d.Submit(context.Background(), mustEvent(t, tt.level))

			assert.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.want, logs.All()[0].Level.String())
		})
	}
}

func TestDispatcher_LevelHelpers(t *testing.T) {
	received := make(chan models.LogEvent, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event models.LogEvent
		if err := jsonDecode(r, &event); err == nil {
			received <- event
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	d := NewDispatcher(Config{Endpoint: server.URL, MaxAttempts: 1, BaseDelay: time.Millisecond})

	d.Error(models.CategoryState, "save failed", map[string]interface{}{"code": "abc123"})

	select {
	case event := <-received:
		assert.Equal(t, models.OriginBackend, event.Origin)
		assert.Equal(t, models.LevelError, event.Level)
		assert.Equal(t, models.CategoryState, event.Category)
		assert.Equal(t, "save failed", event.Message)
		assert.Equal(t, "abc123", event.Context["code"])
	case <-time.After(time.Second):
		t.Fatal("collector did not receive the event")
	}
}

// jsonDecode декодирует тело запроса в v
func jsonDecode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
