package middleware

import "main/internal/config"

// Limits bundles the size and rate ceilings enforced on each connection.
type Limits struct {
	MaxRooms        int
	MaxRoomSize     int
	MaxMessageSize  int
	MaxSnapshotSize int

	MessagesPerSecond float64
	BurstSize         int
}

func NewLimits(cfg *config.Config) *Limits {
	return &Limits{
		MaxRooms:          cfg.MaxRooms,
		MaxRoomSize:       cfg.MaxRoomSize,
		MaxMessageSize:    cfg.MaxMessageSize,
		MaxSnapshotSize:   cfg.MaxSnapshotSize,
		MessagesPerSecond: cfg.MessagesPerSecond,
		BurstSize:         cfg.BurstSize,
	}
}

// ValidateMessageSize checks a raw frame against the per-type ceiling.
// Board snapshots carry full-canvas images and get the larger budget.
func (l *Limits) ValidateMessageSize(msgType string, size int) bool {
	if msgType == "board_state_sync" {
		return size <= l.MaxSnapshotSize
	}
	return size <= l.MaxMessageSize
}

// ValidateSnapshotSize checks a snapshot payload against the image budget.
func (l *Limits) ValidateSnapshotSize(size int) bool {
	return size <= l.MaxSnapshotSize
}
