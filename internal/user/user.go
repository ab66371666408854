package user

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Conn is the write side of a participant's connection. *websocket.Conn
// satisfies it; tests use in-memory recorders.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// User represents one live connection in a room.
type User struct {
	ID   string
	Name string

	conn    Conn
	limiter *rate.Limiter
	writeMu sync.Mutex
}

// New creates a user for a fresh connection with a minted connection ID.
func New(name string, conn Conn, messagesPerSecond float64, burst int) *User {
	return &User{
		ID:      uuid.NewString(),
		Name:    name,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), burst),
	}
}

// WriteMessage serializes writes to the connection. Gorilla connections do
// not allow concurrent writers, and broadcasts fan out from multiple
// goroutines.
func (u *User) WriteMessage(messageType int, data []byte) error {
	u.writeMu.Lock()
	defer u.writeMu.Unlock()
	return u.conn.WriteMessage(messageType, data)
}

// Allow: checks the user's message rate limit
func (u *User) Allow() bool {
	return u.limiter.Allow()
}

// Close closes the underlying connection.
func (u *User) Close() error {
	return u.conn.Close()
}
