package handlers

import (
	"fmt"

	"main/internal/protocol"
	"main/internal/room"
	"main/internal/user"

	"github.com/sirupsen/logrus"
)

// MessageRouter dispatches decoded envelopes to the per-concern handlers.
type MessageRouter struct {
	session    *SessionHandler
	drawing    *DrawingHandler
	permission *PermissionHandler
}

func NewMessageRouter(session *SessionHandler, drawing *DrawingHandler, permission *PermissionHandler) *MessageRouter {
	return &MessageRouter{
		session:    session,
		drawing:    drawing,
		permission: permission,
	}
}

// Route handles one post-join message. The envelope's session ID must
// match the room the connection joined; mismatches are dropped.
func (r *MessageRouter) Route(rm *room.Room, u *user.User, env *protocol.Envelope) error {
	if env.SessionID != "" && env.SessionID != rm.Code {
		logrus.WithFields(logrus.Fields{
			"room":    rm.Code,
			"user":    u.ID,
			"claimed": env.SessionID,
		}).Warn("Message session ID does not match joined room, dropping")
		return room.ErrNotJoined
	}

	switch env.Type {
	case protocol.TypeJoinSession:
		return r.session.RejectRejoin(u)
	case protocol.TypeDrawingAction:
		return r.drawing.HandleAction(rm, u, env)
	case protocol.TypeBoardStateSync:
		return r.drawing.HandleBoardSync(rm, u, env)
	case protocol.TypeRequestPermission:
		return r.permission.HandleRequest(rm, u)
	case protocol.TypeApprovePermission:
		return r.permission.HandleApprove(rm, u, env)
	case protocol.TypeDenyPermission:
		return r.permission.HandleDeny(rm, u, env)
	case protocol.TypeUpdatePermission:
		return r.permission.HandleUpdate(rm, u, env)
	case protocol.TypePromoteHost:
		return r.permission.HandlePromote(rm, u, env)
	default:
		return fmt.Errorf("unknown message type: %q", env.Type)
	}
}
