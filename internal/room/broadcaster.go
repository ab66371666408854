package room

import (
	"sync"

	"main/internal/user"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Connections: minimum interface for broadcasting
type Connections interface {
	Connections() map[string]*user.User
}

// Broadcaster: relays messages to room members
type Broadcaster struct{}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Broadcast sends a message to every member except the origin connection.
// An empty originID excludes nobody. Sends are fire-and-forget; a failed
// connection is closed so its read loop triggers the normal disconnect path.
func (b *Broadcaster) Broadcast(rm Connections, msg []byte, originID string) {
	connections := rm.Connections()

	users := make([]*user.User, 0, len(connections))
	for id, u := range connections {
		if originID != "" && id == originID {
			continue
		}
		users = append(users, u)
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(usr *user.User) {
			defer wg.Done()

			if err := usr.WriteMessage(websocket.TextMessage, msg); err != nil {
				logrus.WithField("user", usr.ID).WithError(err).Warn("Broadcast write failed, closing connection")
				_ = usr.Close()
			}
		}(u)
	}
	wg.Wait()
}

// SendTo sends a message to a single member. Returns false if the target
// is no longer in the room.
func (b *Broadcaster) SendTo(rm Connections, targetID string, msg []byte) bool {
	u, ok := rm.Connections()[targetID]
	if !ok {
		return false
	}

	if err := u.WriteMessage(websocket.TextMessage, msg); err != nil {
		logrus.WithField("user", u.ID).WithError(err).Warn("Targeted write failed, closing connection")
		_ = u.Close()
		return false
	}
	return true
}
