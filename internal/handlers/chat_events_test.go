package handlers

import (
	"strings"
	"testing"

	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/Ernie1234/team-task-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// recordingBroadcaster captures room broadcasts instead of delivering
// them, standing in for the socket server in dispatch tests.
type broadcastRecord struct {
	room  string
	event string
	args  []interface{}
}

type recordingBroadcaster struct {
	records []broadcastRecord
}

func (r *recordingBroadcaster) BroadcastToRoom(namespace string, room, event string, args ...interface{}) bool {
	r.records = append(r.records, broadcastRecord{room: room, event: event, args: args})
	return true
}

func TestValidateContent(t *testing.T) {
	assert.Empty(t, validateContent("hello"))
	assert.Empty(t, validateContent(strings.Repeat("a", 2000)))

	// The bound is characters, not bytes
	assert.Empty(t, validateContent(strings.Repeat("世", 2000)))

	assert.Equal(t, "Message content is required", validateContent(""))
	assert.Equal(t, "Message content is required", validateContent("   "))
	assert.Equal(t, "Message too long (max 2000 characters)", validateContent(strings.Repeat("a", 2001)))
	assert.Equal(t, "Message too long (max 2000 characters)", validateContent(strings.Repeat("世", 2001)))
}

func TestValidateScope(t *testing.T) {
	tests := []struct {
		name    string
		payload chatScopePayload
		want    string
	}{
		{"workspace ok", chatScopePayload{ChatType: "workspace", Workspace: "ws1"}, ""},
		{"workspace missing id", chatScopePayload{ChatType: "workspace"}, "Workspace ID is required for workspace chat"},
		{"project ok", chatScopePayload{ChatType: "project", Project: "p1"}, ""},
		{"project missing id", chatScopePayload{ChatType: "project", Workspace: "ws1"}, "Project ID is required for project chat"},
		{"direct ok", chatScopePayload{ChatType: "direct", OtherUserID: "u2"}, ""},
		{"direct missing other user", chatScopePayload{ChatType: "direct"}, "Other user ID is required for direct messages"},
		{"unknown type", chatScopePayload{ChatType: "group"}, "Valid chat type is required"},
		{"empty type", chatScopePayload{}, "Valid chat type is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateScope(tt.payload))
		})
	}
}

func TestDispatchSendMessage_WorkspaceBroadcast(t *testing.T) {
	SetupTestDB()

	database.DB.Create(&models.User{ID: "u1", Name: "Alice", Email: "u1@example.com"})
	seedMembership("u1", "ws1")

	b := &recordingBroadcaster{}
	sess := socketSession{UserID: "u1", WorkspaceID: "ws1", Name: "Alice"}

	errMsg := dispatchSendMessage(b, sess, sendMessagePayload{
		chatScopePayload: chatScopePayload{ChatType: "workspace", Workspace: "ws1"},
		Content:          "hello",
	})
	assert.Empty(t, errMsg)
	assert.Len(t, b.records, 1)

	rec := b.records[0]
	assert.Equal(t, "workspace:ws1", rec.room)
	assert.Equal(t, "message:new", rec.event)

	payload := rec.args[0].(gin.H)
	msg := payload["message"].(*models.Message)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "Alice", msg.Sender.Name)
}

func TestDispatchSendMessage_DeniedNoBroadcast(t *testing.T) {
	SetupTestDB()

	database.DB.Create(&models.User{ID: "outsider", Name: "Eve", Email: "eve@example.com"})

	b := &recordingBroadcaster{}
	sess := socketSession{UserID: "outsider"}

	errMsg := dispatchSendMessage(b, sess, sendMessagePayload{
		chatScopePayload: chatScopePayload{ChatType: "workspace", Workspace: "ws1"},
		Content:          "let me in",
	})
	assert.Equal(t, "Access denied to workspace", errMsg)
	assert.Empty(t, b.records)

	// Malformed payloads never reach the broadcaster either
	errMsg = dispatchSendMessage(b, sess, sendMessagePayload{
		chatScopePayload: chatScopePayload{ChatType: "workspace", Workspace: "ws1"},
	})
	assert.Equal(t, "Message content is required", errMsg)
	assert.Empty(t, b.records)
}

func TestDispatchSendMessage_DirectRoom(t *testing.T) {
	SetupTestDB()

	database.DB.Create(&models.User{ID: "u1", Name: "Alice", Email: "u1@example.com"})
	database.DB.Create(&models.User{ID: "u2", Name: "Bob", Email: "u2@example.com"})

	b := &recordingBroadcaster{}
	sess := socketSession{UserID: "u2", Name: "Bob"}

	errMsg := dispatchSendMessage(b, sess, sendMessagePayload{
		chatScopePayload: chatScopePayload{ChatType: "direct", OtherUserID: "u1"},
		Content:          "hey",
	})
	assert.Empty(t, errMsg)
	assert.Len(t, b.records, 1)
	assert.Equal(t, "direct:u1:u2", b.records[0].room)
	assert.Equal(t, "message:new", b.records[0].event)
}

func TestDispatchEditAndDeleteMessage(t *testing.T) {
	SetupTestDB()

	database.DB.Create(&models.User{ID: "u1", Name: "Alice", Email: "u1@example.com"})
	seedMembership("u1", "ws1")

	msg, err := services.CreateMessage(services.CreateMessageInput{
		Content: "tpyo", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})
	assert.NoError(t, err)

	b := &recordingBroadcaster{}
	sess := socketSession{UserID: "u1", WorkspaceID: "ws1", Name: "Alice"}

	errMsg := dispatchEditMessage(b, sess, editMessagePayload{MessageID: msg.ID, Content: "typo fixed"})
	assert.Empty(t, errMsg)
	assert.Len(t, b.records, 1)
	assert.Equal(t, "workspace:ws1", b.records[0].room)
	assert.Equal(t, "message:edited", b.records[0].event)
	edited := b.records[0].args[0].(gin.H)
	assert.Equal(t, "typo fixed", edited["content"])

	errMsg = dispatchDeleteMessage(b, sess, deleteMessagePayload{MessageID: msg.ID})
	assert.Empty(t, errMsg)
	assert.Len(t, b.records, 2)
	assert.Equal(t, "message:deleted", b.records[1].event)

	// Someone else's message: denial, nothing broadcast
	other := socketSession{UserID: "u2", WorkspaceID: "ws1"}
	errMsg = dispatchDeleteMessage(b, other, deleteMessagePayload{MessageID: msg.ID})
	assert.NotEmpty(t, errMsg)
	assert.Len(t, b.records, 2)
}

func TestDispatchReactMessage(t *testing.T) {
	SetupTestDB()

	database.DB.Create(&models.User{ID: "u1", Name: "Alice", Email: "u1@example.com"})
	seedMembership("u1", "ws1")

	msg, err := services.CreateMessage(services.CreateMessageInput{
		Content: "react here", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})
	assert.NoError(t, err)

	b := &recordingBroadcaster{}
	sess := socketSession{UserID: "u1", WorkspaceID: "ws1"}

	errMsg := dispatchReactMessage(b, sess, reactMessagePayload{MessageID: msg.ID, Emoji: "👍"})
	assert.Empty(t, errMsg)
	assert.Len(t, b.records, 1)
	assert.Equal(t, "message:reaction", b.records[0].event)
	payload := b.records[0].args[0].(gin.H)
	reactions := payload["reactions"].([]models.MessageReaction)
	assert.Len(t, reactions, 1)

	errMsg = dispatchReactMessage(b, sess, reactMessagePayload{MessageID: msg.ID})
	assert.Equal(t, "Valid emoji is required", errMsg)
	assert.Len(t, b.records, 1)
}

func TestAnnouncePresence(t *testing.T) {
	b := &recordingBroadcaster{}
	user := models.User{ID: "u1", Name: "Alice", ProfilePicture: "pic.png"}

	announceUserOnline(b, "ws1", user)
	assert.Len(t, b.records, 1)
	assert.Equal(t, "workspace:ws1", b.records[0].room)
	assert.Equal(t, "user:online", b.records[0].event)
	payload := b.records[0].args[0].(gin.H)
	assert.Equal(t, "u1", payload["userId"])
	assert.Equal(t, "Alice", payload["user"].(gin.H)["name"])

	announceUserOffline(b, "ws1", "u1")
	assert.Len(t, b.records, 2)
	assert.Equal(t, "user:offline", b.records[1].event)
	assert.Equal(t, "u1", b.records[1].args[0].(gin.H)["userId"])

	// No current workspace, nothing to announce
	announceUserOnline(b, "", user)
	announceUserOffline(b, "", "u1")
	assert.Len(t, b.records, 2)
}

func TestScopeRoom(t *testing.T) {
	assert.Equal(t, "workspace:ws1", scopeRoom("me", chatScopePayload{ChatType: "workspace", Workspace: "ws1"}))
	assert.Equal(t, "project:p1", scopeRoom("me", chatScopePayload{ChatType: "project", Project: "p1"}))

	// Direct rooms are the same no matter who resolves them
	assert.Equal(t, scopeRoom("me", chatScopePayload{ChatType: "direct", OtherUserID: "other"}),
		scopeRoom("other", chatScopePayload{ChatType: "direct", OtherUserID: "me"}))

	assert.Empty(t, scopeRoom("me", chatScopePayload{ChatType: "workspace"}))
	assert.Empty(t, scopeRoom("me", chatScopePayload{}))
}
