package handlers

import (
	"fmt"

	"main/internal/middleware"
	"main/internal/protocol"
	"main/internal/room"
	"main/internal/user"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// SessionHandler: joins, leaves, and the presence notifications around them
type SessionHandler struct {
	registry    RoomRegistry
	broadcaster Broadcaster
	limits      *middleware.Limits
}

func NewSessionHandler(registry RoomRegistry, broadcaster Broadcaster, limits *middleware.Limits) *SessionHandler {
	return &SessionHandler{
		registry:    registry,
		broadcaster: broadcaster,
		limits:      limits,
	}
}

// Join registers the user in the room, replies with the full roster
// (self included), and announces the join to everyone already there. The
// room's presence section is held across insert, roster reply, and join
// notification, so every client sees joins in a single order consistent
// with its own roster snapshot.
func (h *SessionHandler) Join(code string, u *user.User) (*room.Room, error) {
	rm, info, err := h.registry.JoinRoom(code, u, h.limits.MaxRooms, h.limits.MaxRoomSize)
	if err != nil {
		return nil, err
	}
	defer rm.EndPresence()

	reply, err := protocol.Encode(protocol.TypeCurrentParticipants, code, protocol.CurrentParticipants{
		SelfID:       u.ID,
		Participants: rm.Roster(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal roster reply: %w", err)
	}
	if err := u.WriteMessage(websocket.TextMessage, reply); err != nil {
		return nil, fmt.Errorf("send roster reply: %w", err)
	}

	joined, err := protocol.Encode(protocol.TypeUserJoined, code, info)
	if err != nil {
		return nil, fmt.Errorf("marshal join notification: %w", err)
	}
	h.broadcaster.Broadcast(rm, joined, u.ID)

	logrus.WithFields(logrus.Fields{
		"room": code,
		"user": u.ID,
		"name": u.Name,
		"host": info.IsHost,
	}).Info("Participant joined")
	return rm, nil
}

// Leave removes the user and notifies the remaining members. A departing
// host additionally vacates the seat, announced via host_left_session.
func (h *SessionHandler) Leave(code string, u *user.User) {
	rm, res := h.registry.Leave(code, u.ID)
	if rm == nil {
		return
	}
	defer rm.EndPresence()
	if !res.Left {
		return
	}

	logrus.WithFields(logrus.Fields{
		"room":     code,
		"user":     u.ID,
		"was_host": res.WasHost,
	}).Info("Participant left")

	if res.Empty {
		return
	}

	left, err := protocol.Encode(protocol.TypeUserLeft, code, protocol.UserLeft{ID: u.ID, Name: res.Name})
	if err == nil {
		h.broadcaster.Broadcast(rm, left, u.ID)
	}

	if res.WasHost {
		hostLeft, err := protocol.Encode(protocol.TypeHostLeftSession, code, protocol.HostLeftSession{OldHostName: res.Name})
		if err == nil {
			h.broadcaster.Broadcast(rm, hostLeft, u.ID)
		}
	}
}

// RejectRejoin answers a join_session sent on a connection that already
// belongs to a room. Connections are bound to one room for their lifetime.
func (h *SessionHandler) RejectRejoin(u *user.User) error {
	notifyDenied(u, "already joined a session")
	return nil
}

// notifyDenied sends an action_denied notice to a single participant.
// Best effort; the room is never told.
func notifyDenied(u *user.User, reason string) {
	msg, err := protocol.Encode(protocol.TypeActionDenied, "", protocol.ActionDenied{Reason: reason})
	if err != nil {
		return
	}
	_ = u.WriteMessage(websocket.TextMessage, msg)
}
