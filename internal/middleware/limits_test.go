package middleware

import (
	"testing"

	"main/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessageSize(t *testing.T) {
	l := NewLimits(&config.Config{
		MaxMessageSize:  100,
		MaxSnapshotSize: 1000,
	})

	assert.True(t, l.ValidateMessageSize("drawing_action", 100))
	assert.False(t, l.ValidateMessageSize("drawing_action", 101))

	// board snapshots get the larger budget
	assert.True(t, l.ValidateMessageSize("board_state_sync", 1000))
	assert.False(t, l.ValidateMessageSize("board_state_sync", 1001))
}

func TestValidateSnapshotSize(t *testing.T) {
	l := NewLimits(&config.Config{MaxSnapshotSize: 10})
	assert.True(t, l.ValidateSnapshotSize(10))
	assert.False(t, l.ValidateSnapshotSize(11))
}

func TestIPRateLimitBurst(t *testing.T) {
	iprl := NewIPRateLimit()

	// burst of 5 per IP
	for i := 0; i < 5; i++ {
		assert.True(t, iprl.Allow("10.0.0.1"))
	}
	assert.False(t, iprl.Allow("10.0.0.1"))

	// independent per IP
	assert.True(t, iprl.Allow("10.0.0.2"))
}
