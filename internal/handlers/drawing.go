package handlers

import (
	"fmt"

	"main/internal/middleware"
	"main/internal/protocol"
	"main/internal/room"
	"main/internal/user"
)

// DrawingHandler: relays drawing events and board snapshots, gated on
// the sender's draw permission
type DrawingHandler struct {
	validator   *protocol.Validator
	broadcaster Broadcaster
	limits      *middleware.Limits
}

func NewDrawingHandler(validator *protocol.Validator, broadcaster Broadcaster, limits *middleware.Limits) *DrawingHandler {
	return &DrawingHandler{
		validator:   validator,
		broadcaster: broadcaster,
		limits:      limits,
	}
}

// HandleAction validates one drawing event and relays it verbatim to every
// other member. The sender never receives its own event back.
func (h *DrawingHandler) HandleAction(rm *room.Room, u *user.User, env *protocol.Envelope) error {
	var action protocol.DrawingAction
	if err := h.validator.DecodePayload(env, &action); err != nil {
		return err
	}

	if !rm.CanDraw(u.ID) {
		notifyDenied(u, "draw permission required")
		return room.ErrPermissionDenied
	}

	sanitized, err := h.validator.ValidateDrawing(action.Tool, action.Data)
	if err != nil {
		return fmt.Errorf("drawing validation failed: %w", err)
	}

	msg, err := protocol.Encode(protocol.TypeDrawingBroadcast, rm.Code, protocol.DrawingBroadcast{
		Tool:   action.Tool,
		Data:   sanitized,
		UserID: u.ID,
	})
	if err != nil {
		return fmt.Errorf("marshal drawing broadcast: %w", err)
	}

	h.broadcaster.Broadcast(rm, msg, u.ID)
	rm.Touch()
	return nil
}

// HandleBoardSync relays a full-canvas snapshot as an authoritative board
// replacement for everyone else. Last writer wins; the server does not
// order concurrent snapshots beyond relay order.
func (h *DrawingHandler) HandleBoardSync(rm *room.Room, u *user.User, env *protocol.Envelope) error {
	var sync protocol.BoardStateSync
	if err := h.validator.DecodePayload(env, &sync); err != nil {
		return err
	}

	if !rm.CanDraw(u.ID) {
		notifyDenied(u, "draw permission required")
		return room.ErrPermissionDenied
	}

	if !h.limits.ValidateSnapshotSize(len(sync.ImageDataURL)) {
		notifyDenied(u, "snapshot too large")
		return fmt.Errorf("snapshot exceeds size limit: %d bytes", len(sync.ImageDataURL))
	}

	msg, err := protocol.Encode(protocol.TypeApplyBoardState, rm.Code, protocol.ApplyBoardState{
		ImageDataURL: sync.ImageDataURL,
		InitiatorID:  u.ID,
	})
	if err != nil {
		return fmt.Errorf("marshal board state broadcast: %w", err)
	}

	h.broadcaster.Broadcast(rm, msg, u.ID)
	rm.Touch()
	return nil
}
