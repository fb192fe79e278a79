package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/Ernie1234/team-task-backend/internal/realtime"
	"github.com/Ernie1234/team-task-backend/pkg/logger"
	"github.com/Ernie1234/team-task-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
)

var SocketServer *socketio.Server

// Presence is the process-wide connection registry. Created at service
// start, injected through InitSocketServer, mutated only by the connect
// and disconnect handlers below.
var Presence *realtime.Presence

// socketSession is the identity attached to an authenticated connection.
type socketSession struct {
	UserID         string
	WorkspaceID    string // user's current workspace at connect time, may be ""
	Name           string
	ProfilePicture string
}

func sessionFrom(s socketio.Conn) (socketSession, bool) {
	sess, ok := s.Context().(socketSession)
	return sess, ok
}

// SendNotificationToUser pushes a real-time notification to a user's
// personal room.
func SendNotificationToUser(userID string, notification interface{}) {
	if SocketServer != nil {
		SocketServer.BroadcastToRoom("/", userID, "notification", notification)
	}
}

// emitSocketError surfaces a handler failure to the triggering
// connection only. Errors never cross the dispatcher boundary.
func emitSocketError(s socketio.Conn, message string) {
	s.Emit("error", gin.H{"message": message})
}

// guardEvent recovers a panicking event handler, logs it, and reports a
// generic failure to the caller. One bad event must never take down the
// connection or the process.
func guardEvent(s socketio.Conn, event, failureMsg string) {
	if r := recover(); r != nil {
		logger.Error().
			Str("event", event).
			Str("socket", s.ID()).
			Str("panic", fmt.Sprintf("%v", r)).
			Msg("Socket event handler panicked")
		emitSocketError(s, failureMsg)
	}
}

// announceUserOnline tells the user's current workspace room they came
// online. No-op when the user has no current workspace.
func announceUserOnline(b roomBroadcaster, workspaceID string, user models.User) {
	if workspaceID == "" {
		return
	}
	b.BroadcastToRoom("/", realtime.WorkspaceRoom(workspaceID), "user:online", gin.H{
		"userId": user.ID,
		"user": gin.H{
			"id":             user.ID,
			"name":           user.Name,
			"profilePicture": user.ProfilePicture,
		},
	})
}

// announceUserOffline mirrors announceUserOnline on disconnect.
func announceUserOffline(b roomBroadcaster, workspaceID, userID string) {
	if workspaceID == "" {
		return
	}
	b.BroadcastToRoom("/", realtime.WorkspaceRoom(workspaceID), "user:offline", gin.H{
		"userId": userID,
	})
}

/// InitSocketServer builds the socket.io server: authenticated handshake,
// presence bookkeeping, and the chat event handlers.
func InitSocketServer(presence *realtime.Presence) *socketio.Server {
	Presence = presence

	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		// Same credential material as the HTTP layer: a bearer token
		// carried on the handshake query.
		url := s.URL()
		token := url.Query().Get("token")
		if token == "" {
			token = url.Query().Get("auth_token")
		}
		if token == "" {
			logger.Warn().Str("socket", s.ID()).Msg("Socket connection rejected: no token provided")
			return fmt.Errorf("authentication required")
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			logger.Warn().Str("socket", s.ID()).Msg("Socket connection rejected: invalid token")
			return fmt.Errorf("authentication required")
		}

		// Reload the account so deleted users with live tokens are
		// turned away at the door.
		var user models.User
		if err := database.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
			logger.Warn().Str("userId", claims.UserID).Msg("Socket connection rejected: user not found")
			return fmt.Errorf("user not found")
		}

		sess := socketSession{
			UserID:         user.ID,
			Name:           user.Name,
			ProfilePicture: user.ProfilePicture,
		}
		if user.CurrentWorkspaceID != nil {
			sess.WorkspaceID = *user.CurrentWorkspaceID
		}
		s.SetContext(sess)

		presence.Set(user.ID, s.ID())

		now := time.Now()
		if err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).
			Updates(map[string]interface{}{"is_online": true, "last_seen": now}).Error; err != nil {
			logger.Error().Err(err).Str("userId", user.ID).Msg("Failed to persist online status")
		}

		// Personal room for targeted notifications
		s.Join(user.ID)

		if sess.WorkspaceID != "" {
			s.Join(realtime.WorkspaceRoom(sess.WorkspaceID))
			announceUserOnline(server, sess.WorkspaceID, user)
		}

		logger.Info().
			Str("userId", user.ID).
			Str("workspaceId", sess.WorkspaceID).
			Str("socket", s.ID()).
			Msg("Socket authenticated")
		return nil
	})

	registerChatEvents(server)

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		sess, ok := sessionFrom(s)
		if !ok {
			// Connection never finished authenticating
			return
		}

		// A stale disconnect after a reconnect must not mark the fresh
		// connection offline.
		if !Presence.Remove(sess.UserID, s.ID()) {
			return
		}

		now := time.Now()
		if err := database.DB.Model(&models.User{}).Where("id = ?", sess.UserID).
			Updates(map[string]interface{}{"is_online": false, "last_seen": now}).Error; err != nil {
			logger.Error().Err(err).Str("userId", sess.UserID).Msg("Failed to persist offline status")
		}

		announceUserOffline(server, sess.WorkspaceID, sess.UserID)

		logger.Info().
			Str("userId", sess.UserID).
			Str("reason", reason).
			Msg("Socket disconnected")
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		logger.Error().Err(e).Msg("Socket error")
	})

	go func() {
		if err := server.Serve(); err != nil {
			logger.Error().Err(err).Msg("Socket server stopped")
		}
	}()

	SocketServer = server
	return server
}

// SocketHandler mounts the socket.io server on a gin route.
func SocketHandler(server *socketio.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}
