package room

import (
	"sync"
	"time"

	"main/internal/protocol"
	"main/internal/user"
)

// Participant is a room member plus its room-scoped permission state.
type Participant struct {
	User              *user.User
	Color             string
	IsHost            bool
	CanDraw           bool
	HasPendingRequest bool
}

// Room is one collaborative whiteboard session. All mutation happens under
// a single mutex so roster and permission changes are serialized per room.
type Room struct {
	Code string

	participants map[string]*Participant // keyed by connection ID
	hostID       string                  // empty once the host disconnects
	colorGen     *user.ColorGenerator

	CreatedAt  time.Time
	lastActive time.Time
	mu         sync.RWMutex

	// presenceMu serializes a roster change together with the roster reply
	// and presence notifications that announce it, so no client can observe
	// a join or leave out of order with its own roster snapshot. Acquired
	// before r.mu, never while holding it.
	presenceMu sync.Mutex
}

// BeginPresence enters the room's presence section. The registry acquires
// it for joins and leaves; the caller must call EndPresence once the
// matching notifications have been sent.
func (r *Room) BeginPresence() { r.presenceMu.Lock() }

// EndPresence leaves the presence section.
func (r *Room) EndPresence() { r.presenceMu.Unlock() }

func newRoom(code string) *Room {
	now := time.Now()
	return &Room{
		Code:         code,
		participants: make(map[string]*Participant),
		colorGen:     user.NewColorGenerator(),
		CreatedAt:    now,
		lastActive:   now,
	}
}

// Join adds a user and assigns a color. The first participant of a fresh
// room becomes host with permanent draw rights; empty rooms are destroyed,
// so a hostless room with members never re-elects through Join.
func (r *Room) Join(u *user.User, maxRoomSize int) (protocol.ParticipantInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.participants) >= maxRoomSize {
		return protocol.ParticipantInfo{}, ErrRoomFull
	}

	p := &Participant{
		User:  u,
		Color: r.colorGen.NextColor(),
	}
	if len(r.participants) == 0 && r.hostID == "" {
		p.IsHost = true
		p.CanDraw = true
		r.hostID = u.ID
	}

	r.participants[u.ID] = p
	r.lastActive = time.Now()
	return infoOf(p), nil
}

// LeaveResult describes what a removal changed.
type LeaveResult struct {
	Left    bool
	Name    string
	WasHost bool
	Empty   bool
}

// Leave removes a participant. Idempotent; a departing host vacates the
// seat without re-election.
func (r *Room) Leave(userID string) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[userID]
	if !ok {
		return LeaveResult{}
	}

	delete(r.participants, userID)
	res := LeaveResult{
		Left:    true,
		Name:    p.User.Name,
		WasHost: p.IsHost,
		Empty:   len(r.participants) == 0,
	}
	if p.IsHost {
		r.hostID = ""
	}
	r.lastActive = time.Now()
	return res
}

// Roster returns a snapshot of all participants, self included.
func (r *Room) Roster() []protocol.ParticipantInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roster := make([]protocol.ParticipantInfo, 0, len(r.participants))
	for _, p := range r.participants {
		roster = append(roster, infoOf(p))
	}
	return roster
}

// Info returns the roster entry for one participant.
func (r *Room) Info(userID string) (protocol.ParticipantInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[userID]
	if !ok {
		return protocol.ParticipantInfo{}, false
	}
	return infoOf(p), true
}

// CanDraw reports whether the participant currently holds draw permission.
func (r *Room) CanDraw(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[userID]
	return ok && p.CanDraw
}

// HostID returns the seated host's connection ID, if any.
func (r *Room) HostID() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hostID, r.hostID != ""
}

// RequestDraw moves a viewer to the requested state and returns the host to
// notify. A request while already pending or granted is a silent no-op
// (ok=false, err=nil); a request with no host seated fails with ErrNoHost.
func (r *Room) RequestDraw(requesterID string) (hostID string, req protocol.RequestedToHost, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.participants[requesterID]
	if !exists {
		return "", protocol.RequestedToHost{}, false, ErrNotJoined
	}
	if p.CanDraw || p.HasPendingRequest {
		return "", protocol.RequestedToHost{}, false, nil
	}
	if r.hostID == "" {
		return "", protocol.RequestedToHost{}, false, ErrNoHost
	}

	p.HasPendingRequest = true
	r.lastActive = time.Now()
	return r.hostID, protocol.RequestedToHost{
		RequesterID:   requesterID,
		RequesterName: p.User.Name,
	}, true, nil
}

// Resolve settles a pending request. Only the seated host may resolve;
// approve grants draw permission, deny returns the target to no-access.
// hadPending reports whether the target actually had a request open, so
// callers can skip notices for stale resolutions.
func (r *Room) Resolve(actorID, targetID string, approve bool) (updated protocol.PermissionUpdated, hadPending bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(actorID); err != nil {
		return protocol.PermissionUpdated{}, false, err
	}
	target, ok := r.participants[targetID]
	if !ok {
		return protocol.PermissionUpdated{}, false, ErrUnknownTarget
	}
	if target.IsHost {
		return protocol.PermissionUpdated{}, false, ErrCannotRevokeHost
	}

	hadPending = target.HasPendingRequest
	target.HasPendingRequest = false
	if approve {
		target.CanDraw = true
	}
	r.lastActive = time.Now()
	return protocol.PermissionUpdated{
		TargetUserID: targetID,
		TargetName:   target.User.Name,
		CanDraw:      target.CanDraw,
	}, hadPending, nil
}

// SetPermission is the host's direct grant/revoke, bypassing the request
// handshake. Revoking the host's own permission is rejected.
func (r *Room) SetPermission(actorID, targetID string, canDraw bool) (protocol.PermissionUpdated, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(actorID); err != nil {
		return protocol.PermissionUpdated{}, err
	}
	target, ok := r.participants[targetID]
	if !ok {
		return protocol.PermissionUpdated{}, ErrUnknownTarget
	}
	if target.IsHost && !canDraw {
		return protocol.PermissionUpdated{}, ErrCannotRevokeHost
	}

	target.CanDraw = canDraw
	target.HasPendingRequest = false
	r.lastActive = time.Now()
	return protocol.PermissionUpdated{
		TargetUserID: targetID,
		TargetName:   target.User.Name,
		CanDraw:      canDraw,
	}, nil
}

// Promote transfers or claims the host seat. With a host seated only that
// host may promote; a hostless room accepts only a self-claim, first one
// winning under the room lock.
func (r *Room) Promote(actorID, targetID string) (protocol.HostPromoted, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hostID != "" {
		if actorID != r.hostID {
			return protocol.HostPromoted{}, ErrNotHost
		}
	} else if actorID != targetID {
		return protocol.HostPromoted{}, ErrNotHost
	}

	target, ok := r.participants[targetID]
	if !ok {
		return protocol.HostPromoted{}, ErrUnknownTarget
	}
	if target.IsHost {
		return protocol.HostPromoted{}, ErrUnknownTarget
	}

	if old, ok := r.participants[r.hostID]; ok {
		// the outgoing host keeps draw permission
		old.IsHost = false
	}
	target.IsHost = true
	target.CanDraw = true
	target.HasPendingRequest = false
	r.hostID = targetID
	r.lastActive = time.Now()
	return protocol.HostPromoted{
		NewHostID:   targetID,
		NewHostName: target.User.Name,
	}, nil
}

// Connections returns a snapshot of members for broadcasting.
func (r *Room) Connections() map[string]*user.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]*user.User, len(r.participants))
	for id, p := range r.participants {
		snapshot[id] = p.User
	}
	return snapshot
}

// ParticipantCount returns the number of members in the room.
func (r *Room) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// Touch updates the activity timestamp.
func (r *Room) Touch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = time.Now()
}

// LastActive returns the activity timestamp.
func (r *Room) LastActive() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActive
}

// requireHost must be called with r.mu held.
func (r *Room) requireHost(actorID string) error {
	if r.hostID == "" {
		return ErrNoHost
	}
	if actorID != r.hostID {
		return ErrNotHost
	}
	return nil
}

func infoOf(p *Participant) protocol.ParticipantInfo {
	return protocol.ParticipantInfo{
		ID:      p.User.ID,
		Name:    p.User.Name,
		Color:   p.Color,
		CanDraw: p.CanDraw,
		IsHost:  p.IsHost,
	}
}
