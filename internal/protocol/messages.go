package protocol

import "encoding/json"

// Client → server message types
const (
	TypeJoinSession       = "join_session"
	TypeDrawingAction     = "drawing_action"
	TypeBoardStateSync    = "board_state_sync"
	TypeRequestPermission = "request_draw_permission"
	TypeApprovePermission = "approve_draw_permission"
	TypeDenyPermission    = "deny_draw_permission"
	TypeUpdatePermission  = "update_draw_permission"
	TypePromoteHost       = "promote_host"
)

// Server → client message types
const (
	TypeCurrentParticipants = "current_participants"
	TypeUserJoined          = "user_joined"
	TypeUserLeft            = "user_left"
	TypeHostLeftSession     = "host_left_session"
	TypeDrawingBroadcast    = "drawing_action_broadcast"
	TypeRequestedToHost     = "draw_permission_requested_to_host"
	TypePermissionUpdated   = "permission_updated"
	TypeRequestDenied       = "draw_request_denied"
	TypeApplyBoardState     = "apply_board_state"
	TypeHostPromoted        = "host_promoted"
	TypeActionDenied        = "action_denied"
)

// Envelope is the outer frame of every message in both directions.
type Envelope struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// =============================================================================
// Client payloads
// =============================================================================

type JoinSession struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=64"`
}

// DrawingAction carries one drawing event. Data is validated against the
// per-tool schema before it is relayed.
type DrawingAction struct {
	Tool string                 `json:"tool" validate:"required"`
	Data map[string]interface{} `json:"data"`
}

type BoardStateSync struct {
	ImageDataURL string `json:"imageDataUrl" validate:"required,startswith=data:image/"`
}

type PermissionTarget struct {
	TargetUserID string `json:"targetUserId" validate:"required,max=64"`
}

type UpdatePermission struct {
	TargetUserID string `json:"targetUserId" validate:"required,max=64"`
	CanDraw      bool   `json:"canDraw"`
}

type PromoteHost struct {
	TargetUserID string `json:"targetUserId" validate:"required,max=64"`
}

// =============================================================================
// Server payloads
// =============================================================================

// ParticipantInfo is one roster entry as seen by clients.
type ParticipantInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	CanDraw bool   `json:"canDraw"`
	IsHost  bool   `json:"isHost"`
}

type CurrentParticipants struct {
	SelfID       string            `json:"selfId"`
	Participants []ParticipantInfo `json:"participants"`
}

type UserLeft struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type HostLeftSession struct {
	OldHostName string `json:"oldHostName"`
}

type DrawingBroadcast struct {
	Tool   string                 `json:"tool"`
	Data   map[string]interface{} `json:"data,omitempty"`
	UserID string                 `json:"userId"`
}

type RequestedToHost struct {
	RequesterID   string `json:"requesterId"`
	RequesterName string `json:"requesterName"`
}

type PermissionUpdated struct {
	TargetUserID string `json:"targetUserId"`
	TargetName   string `json:"targetName"`
	CanDraw      bool   `json:"canDraw"`
}

type RequestDenied struct {
	Reason string `json:"reason"`
}

type ApplyBoardState struct {
	ImageDataURL string `json:"imageDataUrl"`
	InitiatorID  string `json:"initiatorId"`
}

type HostPromoted struct {
	NewHostID   string `json:"newHostId"`
	NewHostName string `json:"newHostName"`
}

type ActionDenied struct {
	Reason string `json:"reason"`
}

// Encode wraps a payload in an envelope and marshals it.
func Encode(msgType, sessionID string, payload interface{}) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Type: msgType, SessionID: sessionID, Payload: raw})
}
