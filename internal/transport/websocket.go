package transport

import (
	"net/http"
	"strings"
	"time"

	"main/internal/config"
	"main/internal/handlers"
	"main/internal/middleware"
	"main/internal/protocol"
	"main/internal/room"
	"main/internal/user"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Server owns the WebSocket endpoint: origin checks, the join handshake,
// and the per-connection read loop.
type Server struct {
	cfg       *config.Config
	limits    *middleware.Limits
	validator *protocol.Validator
	session   *handlers.SessionHandler
	router    *handlers.MessageRouter
	ipLimiter *middleware.IPRateLimit
	upgrader  websocket.Upgrader
}

func NewServer(
	cfg *config.Config,
	limits *middleware.Limits,
	validator *protocol.Validator,
	session *handlers.SessionHandler,
	router *handlers.MessageRouter,
	ipLimiter *middleware.IPRateLimit,
) *Server {
	s := &Server{
		cfg:       cfg,
		limits:    limits,
		validator: validator,
		session:   session,
		router:    router,
		ipLimiter: ipLimiter,
	}
	s.upgrader = websocket.Upgrader{
		// CORS
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range cfg.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	return s
}

// GetClientIP extracts the client IP for rate limiting.
func GetClientIP(r *http.Request) string {
	// Use RemoteAddr only - cannot be spoofed by client
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx] // Remove port
	}
	return ip
}

// HandleWebSocket upgrades the connection, runs the join handshake, and
// enters the read loop. Closing the connection is the only way out; the
// deferred leave handles presence for every exit path.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)
	if !s.ipLimiter.Allow(clientIP) {
		logrus.WithField("ip", clientIP).Warn("Connection rate limit exceeded")
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(int64(s.limits.MaxSnapshotSize))

	code, u, ok := s.handshake(conn)
	if !ok {
		return
	}

	rm, err := s.session.Join(code, u)
	if err != nil {
		logrus.WithFields(logrus.Fields{"room": code, "ip": clientIP}).WithError(err).Warn("Join rejected")
		s.rejectJoin(conn, err)
		return
	}
	defer s.session.Leave(code, u)

	s.run(conn, rm, u)
}

// handshake waits for the first frame, which must be a valid join_session
// naming the room. Anything else closes the connection before it touches
// any room state.
func (s *Server) handshake(conn *websocket.Conn) (code string, u *user.User, ok bool) {
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.JoinTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		logrus.WithError(err).Debug("No join message before deadline")
		return "", nil, false
	}
	_ = conn.SetReadDeadline(time.Time{})

	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		logrus.WithError(err).Debug("Malformed join envelope")
		return "", nil, false
	}
	if env.Type != protocol.TypeJoinSession {
		logrus.WithField("type", env.Type).Debug("First frame was not join_session")
		return "", nil, false
	}
	if env.SessionID == "" {
		logrus.Debug("Join without session ID")
		return "", nil, false
	}

	var join protocol.JoinSession
	if err := s.validator.DecodePayload(env, &join); err != nil {
		logrus.WithError(err).Debug("Invalid join payload")
		return "", nil, false
	}

	name := strings.TrimSpace(s.validator.SanitizeString(join.DisplayName))
	if name == "" {
		logrus.Debug("Display name empty after sanitization")
		return "", nil, false
	}

	return env.SessionID, user.New(name, conn, s.limits.MessagesPerSecond, s.limits.BurstSize), true
}

// rejectJoin tells the client why before the deferred close.
func (s *Server) rejectJoin(conn *websocket.Conn, err error) {
	msg, encErr := protocol.Encode(protocol.TypeActionDenied, "", protocol.ActionDenied{Reason: err.Error()})
	if encErr != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, msg)
}

// run is the per-connection read loop with ping keepalive.
func (s *Server) run(conn *websocket.Conn, rm *room.Room, u *user.User) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.keepalive(u, done)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			logrus.WithFields(logrus.Fields{"room": rm.Code, "user": u.ID}).WithError(err).Debug("Connection closed")
			return
		}

		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			logrus.WithFields(logrus.Fields{"room": rm.Code, "user": u.ID}).WithError(err).Warn("Malformed message dropped")
			continue
		}

		if !s.limits.ValidateMessageSize(env.Type, len(msg)) {
			logrus.WithFields(logrus.Fields{
				"room": rm.Code,
				"user": u.ID,
				"type": env.Type,
				"size": len(msg),
			}).Warn("Oversized message dropped")
			continue
		}

		if !u.Allow() {
			logrus.WithFields(logrus.Fields{"room": rm.Code, "user": u.ID}).Warn("Message rate limit exceeded")
			continue
		}

		if err := s.router.Route(rm, u, env); err != nil {
			logrus.WithFields(logrus.Fields{
				"room": rm.Code,
				"user": u.ID,
				"type": env.Type,
			}).WithError(err).Warn("Message rejected")
		}
	}
}

// keepalive pings until the read loop exits. A dead peer stops answering
// pongs, the read deadline fires, and the loop tears the connection down.
func (s *Server) keepalive(u *user.User, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := u.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
