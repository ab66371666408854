package room

import (
	"sync"
	"time"

	"main/internal/protocol"
	"main/internal/user"

	"github.com/sirupsen/logrus"
)

// Registry is the in-memory room table. Lookup, creation and destruction
// are serialized by the registry mutex so no two concurrent joins can both
// create the same room, and a join can never land on a destroyed room.
type Registry struct {
	rooms map[string]*Room
	mu    sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// JoinRoom adds a user to the named room, creating it if needed. Creation
// and the first join are atomic: the creating connection becomes host.
// On success the room's presence section is held; the caller must call
// EndPresence after sending the roster reply and join notification, so no
// other join or leave can interleave with them.
func (rg *Registry) JoinRoom(code string, u *user.User, maxRooms, maxRoomSize int) (*Room, protocol.ParticipantInfo, error) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	rm, exists := rg.rooms[code]
	if !exists {
		if len(rg.rooms) >= maxRooms {
			return nil, protocol.ParticipantInfo{}, ErrServerFull
		}
		rm = newRoom(code)
		rg.rooms[code] = rm
		logrus.WithField("room", code).Info("Room created")
	}

	rm.BeginPresence()
	info, err := rm.Join(u, maxRoomSize)
	if err != nil {
		rm.EndPresence()
		if !exists {
			delete(rg.rooms, code)
		}
		return nil, protocol.ParticipantInfo{}, err
	}
	return rm, info, nil
}

// Leave removes a user from the named room and destroys the room once the
// last participant is gone. When a room is returned its presence section
// is held; the caller must call EndPresence after sending the departure
// notifications.
func (rg *Registry) Leave(code, userID string) (*Room, LeaveResult) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	rm, exists := rg.rooms[code]
	if !exists {
		return nil, LeaveResult{}
	}

	rm.BeginPresence()
	res := rm.Leave(userID)
	if res.Empty {
		delete(rg.rooms, code)
		logrus.WithField("room", code).Info("Room empty, destroyed")
	}
	return rm, res
}

// Get looks up a room by code.
func (rg *Registry) Get(code string) (*Room, bool) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	rm, exists := rg.rooms[code]
	return rm, exists
}

// RoomCount returns the number of live rooms.
func (rg *Registry) RoomCount() int {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	return len(rg.rooms)
}

// Cleanup prunes rooms that have sat empty past maxIdle. Empty rooms are
// destroyed on the last leave, so this only catches strays.
func (rg *Registry) Cleanup(maxIdle time.Duration) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	now := time.Now()
	for code, rm := range rg.rooms {
		if rm.ParticipantCount() == 0 && now.Sub(rm.LastActive()) > maxIdle {
			delete(rg.rooms, code)
			logrus.WithField("room", code).Info("Stale room pruned")
		}
	}
}
