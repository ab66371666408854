package handlers

import (
	"main/internal/protocol"
	"main/internal/room"
	"main/internal/user"
)

// Broadcaster defines the relay operations handlers need.
type Broadcaster interface {
	Broadcast(rm room.Connections, msg []byte, originID string)
	SendTo(rm room.Connections, targetID string, msg []byte) bool
}

// RoomRegistry defines the room-store operations the session handler needs.
// Both operations return with the room's presence section held (JoinRoom
// only on success); the caller releases it after sending the notifications
// for the roster change.
type RoomRegistry interface {
	JoinRoom(code string, u *user.User, maxRooms, maxRoomSize int) (*room.Room, protocol.ParticipantInfo, error)
	Leave(code, userID string) (*room.Room, room.LeaveResult)
}
