package room

import "errors"

var (
	// ErrRoomFull: the room reached its participant limit
	ErrRoomFull = errors.New("room is full")

	// ErrServerFull: the registry reached its room limit
	ErrServerFull = errors.New("server at maximum room capacity")

	// ErrNotHost: a host-only action was attempted by a non-host
	ErrNotHost = errors.New("caller is not the room host")

	// ErrNoHost: the room currently has no host seated
	ErrNoHost = errors.New("room has no host")

	// ErrUnknownTarget: the action names a participant not in the room
	ErrUnknownTarget = errors.New("target participant not in room")

	// ErrCannotRevokeHost: the host's draw permission is immutable
	ErrCannotRevokeHost = errors.New("cannot revoke the host's draw permission")

	// ErrNotJoined: the sender is not a member of the referenced room
	ErrNotJoined = errors.New("sender has not joined this room")

	// ErrPermissionDenied: drawing attempted without draw permission
	ErrPermissionDenied = errors.New("draw permission required")
)
