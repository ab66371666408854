package transport

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"main/internal/middleware"

	"github.com/stretchr/testify/assert"
)

func TestGetClientIPUsesRemoteAddrOnly(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	r.RemoteAddr = "203.0.113.7:51234"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 198.51.100.2")
	r.Header.Set("X-Real-IP", "198.51.100.3")

	assert.Equal(t, "203.0.113.7", GetClientIP(r))
}

func TestForgedHeadersCannotResetConnectionLimit(t *testing.T) {
	limiter := middleware.NewIPRateLimit()

	allowed := 0
	for i := 0; i < 100; i++ {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.RemoteAddr = "203.0.113.7:51234"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		if limiter.Allow(GetClientIP(r)) {
			allowed++
		}
	}

	// one peer stays capped at the per-IP burst no matter what it forges
	assert.Equal(t, 5, allowed)
}
