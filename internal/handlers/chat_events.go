package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/Ernie1234/team-task-backend/internal/realtime"
	"github.com/Ernie1234/team-task-backend/internal/services"
	"github.com/Ernie1234/team-task-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
)

// roomBroadcaster is the slice of the socket server the dispatch
// functions need. *socketio.Server satisfies it.
type roomBroadcaster interface {
	BroadcastToRoom(namespace string, room, event string, args ...interface{}) bool
}

// Inbound event payloads. Each event has its own shape, decoded and
// validated before any store call; anything malformed is answered with
// an error event and never broadcast.

type chatScopePayload struct {
	ChatType    string `json:"chatType"`
	Workspace   string `json:"workspace"`
	Project     string `json:"project"`
	OtherUserID string `json:"otherUserId"`
}

type sendMessagePayload struct {
	chatScopePayload
	Content     string  `json:"content"`
	MessageType string  `json:"messageType"`
	ReplyTo     *string `json:"replyTo"`
}

type editMessagePayload struct {
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
}

type deleteMessagePayload struct {
	MessageID string `json:"messageId"`
}

type reactMessagePayload struct {
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

type leaveRoomPayload struct {
	RoomName string `json:"roomName"`
}

// validateContent returns a rejection message or "" when the content is
// within bounds after trimming. The bound is in characters, not bytes.
func validateContent(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "Message content is required"
	}
	if utf8.RuneCountInString(trimmed) > models.MaxMessageLength {
		return "Message too long (max 2000 characters)"
	}
	return ""
}

// validateScope checks that the scope id demanded by the chat type is
// present. Returns a rejection message or "".
func validateScope(p chatScopePayload) string {
	switch models.ChatType(p.ChatType) {
	case models.ChatTypeWorkspace:
		if p.Workspace == "" {
			return "Workspace ID is required for workspace chat"
		}
	case models.ChatTypeProject:
		if p.Project == "" {
			return "Project ID is required for project chat"
		}
	case models.ChatTypeDirect:
		if p.OtherUserID == "" {
			return "Other user ID is required for direct messages"
		}
	default:
		return "Valid chat type is required"
	}
	return ""
}

// scopeRoom resolves the target room for a scope payload relative to the
// caller. Empty when the payload is incomplete.
func scopeRoom(selfID string, p chatScopePayload) string {
	return realtime.RoomForChat(models.ChatType(p.ChatType), p.Workspace, p.Project, selfID, p.OtherUserID)
}

// Dispatch functions carry each event from validation through broadcast.
// They return a rejection message for the sender, or "" on success.
// Keeping them off socketio.Conn lets tests drive them with a capturing
// broadcaster.

func dispatchSendMessage(b roomBroadcaster, sess socketSession, p sendMessagePayload) string {
	if msg := validateContent(p.Content); msg != "" {
		return msg
	}
	if msg := validateScope(p.chatScopePayload); msg != "" {
		return msg
	}

	chatType := models.ChatType(p.ChatType)
	input := services.CreateMessageInput{
		Content:     p.Content,
		SenderID:    sess.UserID,
		ChatType:    chatType,
		MessageType: models.MessageType(p.MessageType),
		ReplyToID:   p.ReplyTo,
	}

	switch chatType {
	case models.ChatTypeWorkspace:
		if !services.VerifyWorkspaceAccess(sess.UserID, p.Workspace) {
			return "Access denied to workspace"
		}
		input.WorkspaceID = p.Workspace
	case models.ChatTypeProject:
		if !services.VerifyProjectAccess(sess.UserID, p.Project) {
			return "Access denied to project"
		}
		input.ProjectID = p.Project
		input.WorkspaceID = services.ProjectWorkspaceID(p.Project)
	case models.ChatTypeDirect:
		input.Participants = []string{sess.UserID, p.OtherUserID}
	}

	message, err := services.CreateMessage(input)
	if err != nil {
		return err.Error()
	}

	room := scopeRoom(sess.UserID, p.chatScopePayload)
	b.BroadcastToRoom("/", room, "message:new", gin.H{
		"message": message,
	})

	logger.Info().
		Str("userId", sess.UserID).
		Str("chatType", p.ChatType).
		Str("room", room).
		Msg("Message sent")
	return ""
}

func dispatchEditMessage(b roomBroadcaster, sess socketSession, p editMessagePayload) string {
	if msg := validateContent(p.Content); msg != "" {
		return msg
	}

	message, err := services.EditMessage(p.MessageID, sess.UserID, sess.WorkspaceID, p.Content)
	if err != nil {
		return err.Error()
	}

	b.BroadcastToRoom("/", realtime.WorkspaceRoom(sess.WorkspaceID), "message:edited", gin.H{
		"messageId": message.ID,
		"content":   message.Content,
		"isEdited":  message.IsEdited,
		"editedAt":  message.EditedAt,
	})
	return ""
}

func dispatchDeleteMessage(b roomBroadcaster, sess socketSession, p deleteMessagePayload) string {
	message, err := services.SoftDeleteMessage(p.MessageID, sess.UserID, sess.WorkspaceID)
	if err != nil {
		return err.Error()
	}

	b.BroadcastToRoom("/", realtime.WorkspaceRoom(sess.WorkspaceID), "message:deleted", gin.H{
		"messageId": message.ID,
	})
	return ""
}

func dispatchReactMessage(b roomBroadcaster, sess socketSession, p reactMessagePayload) string {
	if p.Emoji == "" {
		return "Valid emoji is required"
	}

	reactions, err := services.ToggleReaction(p.MessageID, sess.UserID, sess.WorkspaceID, p.Emoji)
	if err != nil {
		return err.Error()
	}

	b.BroadcastToRoom("/", realtime.WorkspaceRoom(sess.WorkspaceID), "message:reaction", gin.H{
		"messageId": p.MessageID,
		"reactions": reactions,
	})
	return ""
}

// registerChatEvents wires the chat event handlers onto the server.
//
// Every handler follows the same shape: validate payload, authorize
// scope, hit the store, resolve the room, broadcast. Failures surface as
// an error event to the sender only.
func registerChatEvents(server *socketio.Server) {
	server.OnEvent("/", "message:send", func(s socketio.Conn, p sendMessagePayload) {
		defer guardEvent(s, "message:send", "Failed to send message")

		sess, ok := sessionFrom(s)
		if !ok {
			emitSocketError(s, "Authentication required")
			return
		}
		if msg := dispatchSendMessage(server, sess, p); msg != "" {
			emitSocketError(s, msg)
		}
	})

	server.OnEvent("/", "message:edit", func(s socketio.Conn, p editMessagePayload) {
		defer guardEvent(s, "message:edit", "Failed to edit message")

		sess, ok := sessionFrom(s)
		if !ok {
			emitSocketError(s, "Authentication required")
			return
		}
		if msg := dispatchEditMessage(server, sess, p); msg != "" {
			emitSocketError(s, msg)
		}
	})

	server.OnEvent("/", "message:delete", func(s socketio.Conn, p deleteMessagePayload) {
		defer guardEvent(s, "message:delete", "Failed to delete message")

		sess, ok := sessionFrom(s)
		if !ok {
			emitSocketError(s, "Authentication required")
			return
		}
		if msg := dispatchDeleteMessage(server, sess, p); msg != "" {
			emitSocketError(s, msg)
		}
	})

	server.OnEvent("/", "message:react", func(s socketio.Conn, p reactMessagePayload) {
		defer guardEvent(s, "message:react", "Failed to react to message")

		sess, ok := sessionFrom(s)
		if !ok {
			emitSocketError(s, "Authentication required")
			return
		}
		if msg := dispatchReactMessage(server, sess, p); msg != "" {
			emitSocketError(s, msg)
		}
	})

	// Typing indicators are advisory: nothing is persisted and no access
	// check runs. They echo to the resolved room at whatever rate the
	// client sends them.
	server.OnEvent("/", "typing:start", func(s socketio.Conn, p chatScopePayload) {
		defer guardEvent(s, "typing:start", "Failed to send typing indicator")

		sess, ok := sessionFrom(s)
		if !ok {
			return
		}
		room := scopeRoom(sess.UserID, p)
		if room == "" {
			return
		}
		server.BroadcastToRoom("/", room, "typing:start", gin.H{
			"roomName": room,
			"userId":   sess.UserID,
			"user": gin.H{
				"id":   sess.UserID,
				"name": sess.Name,
			},
			"userName":       sess.Name,
			"profilePicture": sess.ProfilePicture,
		})
	})

	server.OnEvent("/", "typing:stop", func(s socketio.Conn, p chatScopePayload) {
		defer guardEvent(s, "typing:stop", "Failed to send typing indicator")

		sess, ok := sessionFrom(s)
		if !ok {
			return
		}
		room := scopeRoom(sess.UserID, p)
		if room == "" {
			return
		}
		server.BroadcastToRoom("/", room, "typing:stop", gin.H{
			"roomName": room,
			"userId":   sess.UserID,
		})
	})

	server.OnEvent("/", "room:join", func(s socketio.Conn, p chatScopePayload) {
		defer guardEvent(s, "room:join", "Failed to join room")

		sess, ok := sessionFrom(s)
		if !ok {
			emitSocketError(s, "Authentication required")
			return
		}
		if msg := validateScope(p); msg != "" {
			emitSocketError(s, msg)
			return
		}

		hasAccess := false
		switch models.ChatType(p.ChatType) {
		case models.ChatTypeWorkspace:
			hasAccess = services.VerifyWorkspaceAccess(sess.UserID, p.Workspace)
		case models.ChatTypeProject:
			hasAccess = services.VerifyProjectAccess(sess.UserID, p.Project)
		case models.ChatTypeDirect:
			// Open policy: any authenticated user can start a DM
			hasAccess = true
		}

		if !hasAccess {
			emitSocketError(s, "Access denied to "+p.ChatType+" chat")
			return
		}

		room := scopeRoom(sess.UserID, p)
		s.Join(room)
		s.Emit("room:joined", gin.H{"chatType": p.ChatType, "roomName": room})

		logger.Info().
			Str("userId", sess.UserID).
			Str("room", room).
			Msg("User joined room")
	})

	server.OnEvent("/", "room:leave", func(s socketio.Conn, p leaveRoomPayload) {
		defer guardEvent(s, "room:leave", "Failed to leave room")

		if p.RoomName == "" {
			emitSocketError(s, "Room name is required")
			return
		}

		// Leaving an unjoined room is a no-op
		s.Leave(p.RoomName)
		s.Emit("room:left", gin.H{"roomName": p.RoomName})
	})
}
