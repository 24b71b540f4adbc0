package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTrustedSubnetMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		trustedSubnet string
		realIP        string
		expectedCode  int
	}{
		{"IP in subnet", "192.168.1.0/24", "192.168.1.100", http.StatusOK},
		{"IP outside subnet", "192.168.1.0/24", "10.0.0.5", http.StatusForbidden},
		{"missing header", "192.168.1.0/24", "", http.StatusForbidden},
		{"invalid IP", "192.168.1.0/24", "not-an-ip", http.StatusForbidden},
		{"empty subnet denies all", "", "192.168.1.100", http.StatusForbidden},
		{"invalid CIDR", "bad-cidr", "192.168.1.100", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := TrustedSubnetMiddleware(tt.trustedSubnet, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}
