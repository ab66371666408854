package handlers

import (
	"errors"
	"fmt"

	"main/internal/protocol"
	"main/internal/room"
	"main/internal/user"

	"github.com/sirupsen/logrus"
)

// PermissionHandler: the request/approve/deny handshake plus the host's
// direct grant/revoke and host promotion
type PermissionHandler struct {
	validator   *protocol.Validator
	broadcaster Broadcaster
}

func NewPermissionHandler(validator *protocol.Validator, broadcaster Broadcaster) *PermissionHandler {
	return &PermissionHandler{
		validator:   validator,
		broadcaster: broadcaster,
	}
}

// HandleRequest forwards a viewer's draw request to the host connection
// only. Repeat requests and requests in a hostless room are dropped.
func (h *PermissionHandler) HandleRequest(rm *room.Room, u *user.User) error {
	hostID, req, ok, err := rm.RequestDraw(u.ID)
	if errors.Is(err, room.ErrNoHost) {
		logrus.WithFields(logrus.Fields{"room": rm.Code, "user": u.ID}).Debug("Draw request dropped, no host seated")
		return nil
	}
	if err != nil {
		return err
	}
	if !ok {
		return nil // already granted or already pending
	}

	msg, err := protocol.Encode(protocol.TypeRequestedToHost, rm.Code, req)
	if err != nil {
		return fmt.Errorf("marshal draw request: %w", err)
	}
	h.broadcaster.SendTo(rm, hostID, msg)
	return nil
}

// HandleApprove settles a request in the target's favor and announces the
// new permission to the whole room.
func (h *PermissionHandler) HandleApprove(rm *room.Room, u *user.User, env *protocol.Envelope) error {
	var target protocol.PermissionTarget
	if err := h.validator.DecodePayload(env, &target); err != nil {
		return err
	}

	updated, _, err := rm.Resolve(u.ID, target.TargetUserID, true)
	if err != nil {
		return h.rejectPermissionError(rm, u, err)
	}

	return h.broadcastPermission(rm, updated)
}

// HandleDeny settles a request against the target. Only the requester is
// told; the room sees nothing.
func (h *PermissionHandler) HandleDeny(rm *room.Room, u *user.User, env *protocol.Envelope) error {
	var target protocol.PermissionTarget
	if err := h.validator.DecodePayload(env, &target); err != nil {
		return err
	}

	_, hadPending, err := rm.Resolve(u.ID, target.TargetUserID, false)
	if err != nil {
		return h.rejectPermissionError(rm, u, err)
	}
	if !hadPending {
		return nil // nothing was open, no notice
	}

	msg, err := protocol.Encode(protocol.TypeRequestDenied, rm.Code, protocol.RequestDenied{
		Reason: "the host denied your draw request",
	})
	if err != nil {
		return fmt.Errorf("marshal deny notice: %w", err)
	}
	h.broadcaster.SendTo(rm, target.TargetUserID, msg)
	return nil
}

// HandleUpdate is the host's direct grant/revoke without a prior request.
func (h *PermissionHandler) HandleUpdate(rm *room.Room, u *user.User, env *protocol.Envelope) error {
	var update protocol.UpdatePermission
	if err := h.validator.DecodePayload(env, &update); err != nil {
		return err
	}

	updated, err := rm.SetPermission(u.ID, update.TargetUserID, update.CanDraw)
	if err != nil {
		return h.rejectPermissionError(rm, u, err)
	}

	return h.broadcastPermission(rm, updated)
}

// HandlePromote transfers or claims the host seat and announces the new
// host plus their draw permission to the whole room.
func (h *PermissionHandler) HandlePromote(rm *room.Room, u *user.User, env *protocol.Envelope) error {
	var promote protocol.PromoteHost
	if err := h.validator.DecodePayload(env, &promote); err != nil {
		return err
	}

	promoted, err := rm.Promote(u.ID, promote.TargetUserID)
	if err != nil {
		return h.rejectPermissionError(rm, u, err)
	}

	msg, err := protocol.Encode(protocol.TypeHostPromoted, rm.Code, promoted)
	if err != nil {
		return fmt.Errorf("marshal promotion broadcast: %w", err)
	}
	h.broadcaster.Broadcast(rm, msg, "")

	return h.broadcastPermission(rm, protocol.PermissionUpdated{
		TargetUserID: promoted.NewHostID,
		TargetName:   promoted.NewHostName,
		CanDraw:      true,
	})
}

// broadcastPermission announces a permission change to everyone in the
// room, the acting host included.
func (h *PermissionHandler) broadcastPermission(rm *room.Room, updated protocol.PermissionUpdated) error {
	msg, err := protocol.Encode(protocol.TypePermissionUpdated, rm.Code, updated)
	if err != nil {
		return fmt.Errorf("marshal permission broadcast: %w", err)
	}
	h.broadcaster.Broadcast(rm, msg, "")
	return nil
}

// rejectPermissionError maps state-machine errors to the actor-only
// action_denied notice. Unknown targets are a logged no-op: the
// participant may simply have disconnected first.
func (h *PermissionHandler) rejectPermissionError(rm *room.Room, u *user.User, err error) error {
	switch {
	case errors.Is(err, room.ErrUnknownTarget):
		logrus.WithFields(logrus.Fields{"room": rm.Code, "user": u.ID}).Debug("Permission action targeted a participant no longer in room")
		return nil
	case errors.Is(err, room.ErrNotHost), errors.Is(err, room.ErrNoHost):
		notifyDenied(u, "only the host can manage draw permissions")
		return err
	case errors.Is(err, room.ErrCannotRevokeHost):
		notifyDenied(u, "the host's draw permission cannot be revoked")
		return err
	default:
		return err
	}
}
