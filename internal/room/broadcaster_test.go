package room

import (
	"errors"
	"testing"

	"main/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastExcludesOrigin(t *testing.T) {
	rm := newRoom("ROOM1")
	hostConn := &recorderConn{}
	viewerConn := &recorderConn{}
	host := user.New("Hana", hostConn, 100, 100)
	viewer := user.New("Viktor", viewerConn, 100, 100)
	_, _ = rm.Join(host, 10)
	_, _ = rm.Join(viewer, 10)

	NewBroadcaster().Broadcast(rm, []byte(`{"type":"x"}`), host.ID)

	assert.Equal(t, 0, hostConn.frameCount(), "sender must not receive its own message")
	assert.Equal(t, 1, viewerConn.frameCount())
}

func TestBroadcastEmptyOriginReachesEveryone(t *testing.T) {
	rm := newRoom("ROOM1")
	hostConn := &recorderConn{}
	viewerConn := &recorderConn{}
	_, _ = rm.Join(user.New("Hana", hostConn, 100, 100), 10)
	_, _ = rm.Join(user.New("Viktor", viewerConn, 100, 100), 10)

	NewBroadcaster().Broadcast(rm, []byte(`{"type":"x"}`), "")

	assert.Equal(t, 1, hostConn.frameCount())
	assert.Equal(t, 1, viewerConn.frameCount())
}

func TestBroadcastClosesFailedConnections(t *testing.T) {
	rm := newRoom("ROOM1")
	okConn := &recorderConn{}
	deadConn := &recorderConn{failErr: errors.New("broken pipe")}
	_, _ = rm.Join(user.New("Hana", okConn, 100, 100), 10)
	_, _ = rm.Join(user.New("Viktor", deadConn, 100, 100), 10)

	NewBroadcaster().Broadcast(rm, []byte(`{"type":"x"}`), "")

	assert.Equal(t, 1, okConn.frameCount())
	assert.True(t, deadConn.closed, "failed connection must be closed so its read loop exits")
}

func TestSendTo(t *testing.T) {
	rm := newRoom("ROOM1")
	hostConn := &recorderConn{}
	viewerConn := &recorderConn{}
	host := user.New("Hana", hostConn, 100, 100)
	_, _ = rm.Join(host, 10)
	_, _ = rm.Join(user.New("Viktor", viewerConn, 100, 100), 10)

	b := NewBroadcaster()
	require.True(t, b.SendTo(rm, host.ID, []byte(`{"type":"x"}`)))
	assert.Equal(t, 1, hostConn.frameCount())
	assert.Equal(t, 0, viewerConn.frameCount())

	assert.False(t, b.SendTo(rm, "missing", []byte(`{"type":"x"}`)))
}
