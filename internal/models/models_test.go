package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLogEvent(t *testing.T) {
	tests := []struct {
		name     string
		origin   LogOrigin
		level    LogLevel
		category LogCategory
		wantErr  bool
	}{
		{"valid backend event", OriginBackend, LevelInfo, CategoryAPI, false},
		{"valid frontend event", OriginFrontend, LevelDebug, CategoryComponent, false},
		{"valid fatal auth event", OriginBackend, LevelFatal, CategoryAuth, false},
		{"invalid origin", LogOrigin("middleware"), LevelInfo, CategoryAPI, true},
		{"invalid level", OriginBackend, LogLevel("verbose"), CategoryAPI, true},
		{"invalid category", OriginBackend, LevelInfo, LogCategory("database"), true},
		{"empty origin", LogOrigin(""), LevelInfo, CategoryAPI, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := NewLogEvent(tt.origin, tt.level, tt.category, "test message")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.origin, event.Origin)
			assert.Equal(t, tt.level, event.Level)
			assert.Equal(t, tt.category, event.Category)
			assert.Equal(t, "test message", event.Message)
			assert.False(t, event.Timestamp.IsZero(), "Timestamp should be set")
		})
	}
}

func TestShortURL_IsExpired(t *testing.T) {
	now := time.Now()
	u := ShortURL{
		CreatedAt: now,
		ExpiresAt: now.Add(30 * time.Minute),
	}

	assert.False(t, u.IsExpired(now), "URL should be active at creation")
	assert.False(t, u.IsExpired(now.Add(29*time.Minute)), "URL should be active before expiry")
	assert.True(t, u.IsExpired(now.Add(30*time.Minute)), "URL should be expired exactly at expiry instant")
	assert.True(t, u.IsExpired(now.Add(time.Hour)), "URL should be expired after expiry")
}
