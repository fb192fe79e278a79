package services

import (
	"strings"
	"testing"
	"time"

	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB initializes an in-memory SQLite DB for testing
func SetupTestDB() {
	db, _ := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	database.DB = db
	database.DB.Migrator().DropTable(
		&models.User{},
		&models.Role{},
		&models.Workspace{},
		&models.Member{},
		&models.Project{},
		&models.Message{},
		&models.MessageReaction{},
		&models.Activity{},
		&models.Notification{},
	)
	database.DB.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Workspace{},
		&models.Member{},
		&models.Project{},
		&models.Message{},
		&models.MessageReaction{},
		&models.Activity{},
		&models.Notification{},
	)
}

func seedUser(id, name string) models.User {
	u := models.User{ID: id, Name: name, Email: id + "@example.com"}
	database.DB.Create(&u)
	return u
}

func TestCreateMessage_WorkspaceRoundTrip(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	msg, err := CreateMessage(CreateMessageInput{
		Content:     "  hello team  ",
		SenderID:    "u1",
		ChatType:    models.ChatTypeWorkspace,
		WorkspaceID: "ws1",
	})
	assert.NoError(t, err)
	assert.Equal(t, "hello team", msg.Content) // trimmed
	assert.Equal(t, models.MessageTypeText, msg.MessageType)
	assert.Equal(t, "Alice", msg.Sender.Name)
	assert.NotNil(t, msg.WorkspaceID)
	assert.Equal(t, "ws1", *msg.WorkspaceID)
	assert.Nil(t, msg.ProjectID)
}

func TestCreateMessage_ContentBounds(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	// Whitespace-only is empty after trimming
	_, err := CreateMessage(CreateMessageInput{
		Content: "   ", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})
	assert.Error(t, err)

	// Exactly at the limit passes
	_, err = CreateMessage(CreateMessageInput{
		Content: strings.Repeat("a", 2000), SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})
	assert.NoError(t, err)

	// One over fails
	_, err = CreateMessage(CreateMessageInput{
		Content: strings.Repeat("a", 2001), SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})
	assert.Error(t, err)
}

func TestCreateMessage_ContentBoundsMultibyte(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	// The bound counts characters, not bytes: 1500 CJK chars is 4500
	// bytes and must pass
	msg, err := CreateMessage(CreateMessageInput{
		Content: strings.Repeat("世", 1500), SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})
	assert.NoError(t, err)
	assert.Len(t, []rune(msg.Content), 1500)

	// Exactly 2000 chars passes
	_, err = CreateMessage(CreateMessageInput{
		Content: strings.Repeat("世", 2000), SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})
	assert.NoError(t, err)

	// 2001 chars fails
	_, err = CreateMessage(CreateMessageInput{
		Content: strings.Repeat("世", 2001), SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})
	assert.Error(t, err)
}

func TestEditMessage_ContentBoundsMultibyte(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	msg, _ := CreateMessage(CreateMessageInput{
		Content: "short", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})

	edited, err := EditMessage(msg.ID, "u1", "ws1", strings.Repeat("é", 2000))
	assert.NoError(t, err)
	assert.Len(t, []rune(edited.Content), 2000)

	_, err = EditMessage(msg.ID, "u1", "ws1", strings.Repeat("é", 2001))
	assert.Error(t, err)
}

func TestCreateMessage_ScopeValidation(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	_, err := CreateMessage(CreateMessageInput{
		Content: "hi", SenderID: "u1", ChatType: models.ChatType("bogus"),
	})
	assert.Error(t, err)

	_, err = CreateMessage(CreateMessageInput{
		Content: "hi", SenderID: "u1", ChatType: models.ChatTypeWorkspace,
	})
	assert.Error(t, err)

	// Project chat needs both ids
	_, err = CreateMessage(CreateMessageInput{
		Content: "hi", SenderID: "u1", ChatType: models.ChatTypeProject, ProjectID: "p1",
	})
	assert.Error(t, err)

	_, err = CreateMessage(CreateMessageInput{
		Content: "hi", SenderID: "u1", ChatType: models.ChatTypeDirect, Participants: []string{"u1"},
	})
	assert.Error(t, err)

	_, err = CreateMessage(CreateMessageInput{
		Content: "hi", SenderID: "u1", ChatType: models.ChatTypeDirect, Participants: []string{"u1", "u2"},
	})
	assert.NoError(t, err)
}

func TestCreateMessage_DirectParticipantsCanonical(t *testing.T) {
	SetupTestDB()
	seedUser("zed", "Zed")
	seedUser("amy", "Amy")

	msg, err := CreateMessage(CreateMessageInput{
		Content: "hey", SenderID: "zed", ChatType: models.ChatTypeDirect,
		Participants: []string{"zed", "amy"},
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"amy", "zed"}, msg.Participants())
}

func TestGetMessages_OrderingAndPagination(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		ws := "ws1"
		database.DB.Create(&models.Message{
			Content: "msg" + string(rune('0'+i)), SenderID: "u1",
			ChatType: models.ChatTypeWorkspace, WorkspaceID: &ws,
			MessageType: models.MessageTypeText,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}

	page, err := GetMessages(MessagesQuery{
		ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1", Limit: 3,
	})
	assert.NoError(t, err)
	assert.Len(t, page.Messages, 3)
	assert.True(t, page.HasMore)
	assert.Equal(t, int64(5), page.Total)

	// Page holds the 3 newest, returned oldest first
	assert.Equal(t, "msg2", page.Messages[0].Content)
	assert.Equal(t, "msg4", page.Messages[2].Content)

	page, err = GetMessages(MessagesQuery{
		ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1", Limit: 3, Skip: 3,
	})
	assert.NoError(t, err)
	assert.Len(t, page.Messages, 2)
	assert.False(t, page.HasMore)
	assert.Equal(t, "msg0", page.Messages[0].Content)
}

func TestGetMessages_BeforeCursor(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	ws := "ws1"
	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 4; i++ {
		m := models.Message{
			Content: "n" + string(rune('0'+i)), SenderID: "u1",
			ChatType: models.ChatTypeWorkspace, WorkspaceID: &ws,
			MessageType: models.MessageTypeText,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		database.DB.Create(&m)
		ids = append(ids, m.ID)
	}

	// Only messages strictly older than n2
	page, err := GetMessages(MessagesQuery{
		ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1", Before: ids[2],
	})
	assert.NoError(t, err)
	assert.Len(t, page.Messages, 2)
	assert.Equal(t, "n0", page.Messages[0].Content)
	assert.Equal(t, "n1", page.Messages[1].Content)
}

func TestGetMessages_ExcludesDeleted(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	ws := "ws1"
	kept := models.Message{Content: "kept", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: &ws, MessageType: models.MessageTypeText}
	database.DB.Create(&kept)
	gone := models.Message{Content: models.DeletedMessageContent, SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: &ws, MessageType: models.MessageTypeText, IsDeleted: true}
	database.DB.Create(&gone)

	page, err := GetMessages(MessagesQuery{ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1"})
	assert.NoError(t, err)
	assert.Len(t, page.Messages, 1)
	assert.Equal(t, "kept", page.Messages[0].Content)
	assert.Equal(t, int64(1), page.Total)
}

func TestReplyPreview_DeletedTargetStillResolves(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")
	seedUser("u2", "Bob")

	target, err := CreateMessage(CreateMessageInput{
		Content: "original", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})
	assert.NoError(t, err)

	reply, err := CreateMessage(CreateMessageInput{
		Content: "answering", SenderID: "u2", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
		ReplyToID: &target.ID,
	})
	assert.NoError(t, err)
	assert.NotNil(t, reply.ReplyTo)
	assert.Equal(t, "original", reply.ReplyTo.Content)
	assert.Equal(t, "Alice", reply.ReplyTo.Sender.Name)

	// Delete the target; the reply's preview should carry the tombstone
	_, err = SoftDeleteMessage(target.ID, "u1", "ws1")
	assert.NoError(t, err)

	page, err := GetMessages(MessagesQuery{ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1"})
	assert.NoError(t, err)
	assert.Len(t, page.Messages, 1)
	assert.NotNil(t, page.Messages[0].ReplyTo)
	assert.Equal(t, models.DeletedMessageContent, page.Messages[0].ReplyTo.Content)
}

func TestEditMessage(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	msg, _ := CreateMessage(CreateMessageInput{
		Content: "tpyo", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})

	edited, err := EditMessage(msg.ID, "u1", "ws1", "typo fixed")
	assert.NoError(t, err)
	assert.Equal(t, "typo fixed", edited.Content)
	assert.True(t, edited.IsEdited)
	assert.NotNil(t, edited.EditedAt)
}

func TestEditMessage_OwnershipAndScopeDenied(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")
	seedUser("u2", "Bob")

	msg, _ := CreateMessage(CreateMessageInput{
		Content: "mine", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})

	// Someone else's message
	_, err := EditMessage(msg.ID, "u2", "ws1", "hijacked")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	// Right owner, wrong workspace scope
	_, err = EditMessage(msg.ID, "u1", "ws2", "wrong scope")
	assert.Error(t, err)

	// Unknown id
	_, err = EditMessage("nope", "u1", "ws1", "x")
	assert.Error(t, err)

	// Message untouched throughout
	var check models.Message
	database.DB.First(&check, "id = ?", msg.ID)
	assert.Equal(t, "mine", check.Content)
	assert.False(t, check.IsEdited)
}

func TestSoftDeleteMessage(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	msg, _ := CreateMessage(CreateMessageInput{
		Content: "oops", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})

	deleted, err := SoftDeleteMessage(msg.ID, "u1", "ws1")
	assert.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.Equal(t, models.DeletedMessageContent, deleted.Content)
	assert.NotNil(t, deleted.DeletedAt)

	// Already deleted reads as not found
	_, err = SoftDeleteMessage(msg.ID, "u1", "ws1")
	assert.Error(t, err)
}

func TestSoftDeleteMessage_DirectScope(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")
	seedUser("u2", "Bob")

	msg, _ := CreateMessage(CreateMessageInput{
		Content: "dm", SenderID: "u1", ChatType: models.ChatTypeDirect,
		Participants: []string{"u1", "u2"},
	})

	// Direct messages carry no workspace; a caller with an active
	// workspace cannot touch them
	_, err := SoftDeleteMessage(msg.ID, "u1", "ws1")
	assert.Error(t, err)

	_, err = SoftDeleteMessage(msg.ID, "u1", "")
	assert.NoError(t, err)
}

func TestToggleReaction(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")
	seedUser("u2", "Bob")

	msg, _ := CreateMessage(CreateMessageInput{
		Content: "react here", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
	})

	reactions, err := ToggleReaction(msg.ID, "u2", "ws1", "👍")
	assert.NoError(t, err)
	assert.Len(t, reactions, 1)
	assert.Equal(t, "👍", reactions[0].Emoji)
	assert.Equal(t, "Bob", reactions[0].User.Name)

	// Different emoji from the same user coexists
	reactions, err = ToggleReaction(msg.ID, "u2", "ws1", "🎉")
	assert.NoError(t, err)
	assert.Len(t, reactions, 2)

	// Same (user, emoji) toggles off
	reactions, err = ToggleReaction(msg.ID, "u2", "ws1", "👍")
	assert.NoError(t, err)
	assert.Len(t, reactions, 1)
	assert.Equal(t, "🎉", reactions[0].Emoji)

	_, err = ToggleReaction(msg.ID, "u2", "ws1", "")
	assert.Error(t, err)

	_, err = ToggleReaction("missing", "u2", "ws1", "👍")
	assert.Error(t, err)
}

func TestSearchMessages(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	for _, content := range []string{"Deploy finished", "deploy failed", "lunch plans"} {
		CreateMessage(CreateMessageInput{
			Content: content, SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: "ws1",
		})
	}

	// Case-insensitive substring match
	results, err := SearchMessages(models.ChatTypeWorkspace, "DEPLOY", "ws1", "", nil, 0)
	assert.NoError(t, err)
	assert.Len(t, results, 2)

	// Empty term returns an empty slice, not an error
	results, err = SearchMessages(models.ChatTypeWorkspace, "   ", "ws1", "", nil, 0)
	assert.NoError(t, err)
	assert.Empty(t, results)

	results, err = SearchMessages(models.ChatTypeWorkspace, "nothing matches", "ws1", "", nil, 0)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetWorkspaceStats(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")
	seedUser("u2", "Bob")

	ws := "ws1"
	// Two messages today from different senders
	database.DB.Create(&models.Message{Content: "a", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: &ws, MessageType: models.MessageTypeText, CreatedAt: time.Now()})
	database.DB.Create(&models.Message{Content: "b", SenderID: "u2", ChatType: models.ChatTypeWorkspace, WorkspaceID: &ws, MessageType: models.MessageTypeText, CreatedAt: time.Now()})
	// One old message outside today and the 7-day window
	database.DB.Create(&models.Message{Content: "c", SenderID: "u1", ChatType: models.ChatTypeWorkspace, WorkspaceID: &ws, MessageType: models.MessageTypeText, CreatedAt: time.Now().Add(-8 * 24 * time.Hour)})

	stats, err := GetWorkspaceStats("ws1")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalMessages)
	assert.Equal(t, int64(2), stats.TodayMessages)
	assert.Equal(t, int64(2), stats.ActiveUsers)
}

func TestGetDirectConversations(t *testing.T) {
	SetupTestDB()
	seedUser("me", "Me")
	seedUser("u1", "Alice")
	seedUser("u2", "Bob")

	a, b := "me", "u1"
	old := time.Now().Add(-2 * time.Hour)
	database.DB.Create(&models.Message{Content: "old from alice", SenderID: "u1", ChatType: models.ChatTypeDirect, ParticipantAID: &a, ParticipantBID: &b, MessageType: models.MessageTypeText, CreatedAt: old})
	database.DB.Create(&models.Message{Content: "another from alice", SenderID: "u1", ChatType: models.ChatTypeDirect, ParticipantAID: &a, ParticipantBID: &b, MessageType: models.MessageTypeText, CreatedAt: old.Add(time.Minute)})

	c, d := "me", "u2"
	database.DB.Create(&models.Message{Content: "recent to bob", SenderID: "me", ChatType: models.ChatTypeDirect, ParticipantAID: &c, ParticipantBID: &d, MessageType: models.MessageTypeText, CreatedAt: time.Now().Add(-time.Minute)})

	conversations, err := GetDirectConversations("me")
	assert.NoError(t, err)
	assert.Len(t, conversations, 2)

	// Newest conversation first
	assert.Equal(t, "u2", conversations[0].OtherUser.ID)
	assert.Equal(t, "recent to bob", conversations[0].LastMessage.Content)
	// Everything I sent counts as read
	assert.Equal(t, int64(0), conversations[0].UnreadCount)

	assert.Equal(t, "u1", conversations[1].OtherUser.ID)
	assert.Equal(t, "another from alice", conversations[1].LastMessage.Content)
	assert.Equal(t, int64(2), conversations[1].UnreadCount)
}

func TestMarkMessagesRead_RefreshesLastSeen(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	err := MarkMessagesRead("u1", "whatever")
	assert.NoError(t, err)

	var u models.User
	database.DB.First(&u, "id = ?", "u1")
	assert.NotNil(t, u.LastSeen)
}

func TestGetWorkspaceChatMembers(t *testing.T) {
	SetupTestDB()
	alice := seedUser("u1", "Alice")
	seedUser("u2", "Bob")
	database.DB.Model(&alice).Update("is_online", true)

	role := models.Role{Name: models.RoleMember}
	database.DB.Create(&role)
	database.DB.Create(&models.Member{UserID: "u1", WorkspaceID: "ws1", RoleID: role.ID})
	database.DB.Create(&models.Member{UserID: "u2", WorkspaceID: "ws1", RoleID: role.ID})

	members, err := GetWorkspaceChatMembers("ws1")
	assert.NoError(t, err)
	assert.Len(t, members, 2)

	online, err := GetOnlineUsers("ws1")
	assert.NoError(t, err)
	assert.Len(t, online, 1)
	assert.Equal(t, "u1", online[0].ID)
	assert.Equal(t, string(models.RoleMember), online[0].Role)
}
