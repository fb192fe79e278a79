package services

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/Ernie1234/team-task-backend/pkg/errors"
	"github.com/Ernie1234/team-task-backend/pkg/logger"
	"gorm.io/gorm"
)

// CreateMessageInput carries everything needed to persist a message.
// Exactly the scope fields matching ChatType must be set.
type CreateMessageInput struct {
	Content      string
	SenderID     string
	ChatType     models.ChatType
	WorkspaceID  string
	ProjectID    string
	Participants []string // exactly 2 user ids for direct chat
	MessageType  models.MessageType
	ReplyToID    *string
}

// CreateMessage validates the scope-field/chatType combination and
// persists the message with defaults applied.
func CreateMessage(in CreateMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, errors.BadRequest("Message content is required")
	}
	// Bound is in characters, not bytes
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return nil, errors.BadRequest("Message too long (max 2000 characters)")
	}
	if !in.ChatType.Valid() {
		return nil, errors.BadRequest("Valid chat type is required")
	}

	msg := models.Message{
		Content:     content,
		SenderID:    in.SenderID,
		ChatType:    in.ChatType,
		MessageType: models.MessageTypeText,
		ReplyToID:   in.ReplyToID,
	}
	if in.MessageType != "" {
		if !in.MessageType.Valid() {
			return nil, errors.BadRequest("Valid message type is required")
		}
		msg.MessageType = in.MessageType
	}

	switch in.ChatType {
	case models.ChatTypeWorkspace:
		if in.WorkspaceID == "" {
			return nil, errors.BadRequest("Workspace ID is required for workspace chat")
		}
		msg.WorkspaceID = &in.WorkspaceID
	case models.ChatTypeProject:
		if in.ProjectID == "" || in.WorkspaceID == "" {
			return nil, errors.BadRequest("Project and Workspace IDs are required for project chat")
		}
		msg.WorkspaceID = &in.WorkspaceID
		msg.ProjectID = &in.ProjectID
	case models.ChatTypeDirect:
		if len(in.Participants) != 2 {
			return nil, errors.BadRequest("Exactly 2 participants are required for direct messages")
		}
		msg.SetParticipants(in.Participants[0], in.Participants[1])
	}

	if err := database.DB.Create(&msg).Error; err != nil {
		return nil, err
	}

	// Return with sender and reply preview populated
	database.DB.Preload("Sender").First(&msg, "id = ?", msg.ID)
	if msg.ReplyToID != nil {
		msg.ReplyTo = loadReplyPreview(*msg.ReplyToID)
	}
	return &msg, nil
}

// MessagesQuery selects one chat scope plus pagination controls.
type MessagesQuery struct {
	ChatType     models.ChatType
	WorkspaceID  string
	ProjectID    string
	Participants []string
	Limit        int
	Skip         int
	Before       string // message id; fetch strictly older messages
}

type MessagesPage struct {
	Messages []models.Message `json:"messages"`
	HasMore  bool             `json:"hasMore"`
	Total    int64            `json:"total"`
}

func scopeFilter(db *gorm.DB, chatType models.ChatType, workspaceID, projectID string, participants []string) (*gorm.DB, error) {
	db = db.Where("chat_type = ?", chatType)
	switch chatType {
	case models.ChatTypeWorkspace:
		if workspaceID == "" {
			return nil, errors.BadRequest("Workspace ID is required")
		}
		db = db.Where("workspace_id = ?", workspaceID)
	case models.ChatTypeProject:
		if projectID == "" {
			return nil, errors.BadRequest("Project ID is required")
		}
		db = db.Where("project_id = ?", projectID)
	case models.ChatTypeDirect:
		if len(participants) != 2 {
			return nil, errors.BadRequest("Exactly 2 participants are required")
		}
		a, b := participants[0], participants[1]
		if b < a {
			a, b = b, a
		}
		db = db.Where("participant_a_id = ? AND participant_b_id = ?", a, b)
	default:
		return nil, errors.BadRequest("Valid chat type is required")
	}
	return db, nil
}

// GetMessages pages through a scope's messages. Results come back oldest
// first; HasMore reports whether older messages remain beyond this page.
func GetMessages(q MessagesQuery) (*MessagesPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	skip := q.Skip
	if skip < 0 {
		skip = 0
	}

	base, err := scopeFilter(database.DB.Model(&models.Message{}), q.ChatType, q.WorkspaceID, q.ProjectID, q.Participants)
	if err != nil {
		return nil, err
	}
	base = base.Where("is_deleted = ?", false)

	if q.Before != "" {
		var beforeMsg models.Message
		if err := database.DB.First(&beforeMsg, "id = ?", q.Before).Error; err == nil {
			base = base.Where("created_at < ?", beforeMsg.CreatedAt)
		}
	}

	var messages []models.Message
	if err := base.Session(&gorm.Session{}).
		Preload("Sender").
		Preload("Reactions").
		Preload("Reactions.User").
		Order("created_at desc").
		Limit(limit).
		Offset(skip).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	hasMore := int64(skip+len(messages)) < total

	// Newest-first from the DB, reversed to oldest-first for the client
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	attachReplyPreviews(messages)

	return &MessagesPage{Messages: messages, HasMore: hasMore, Total: total}, nil
}

// loadReplyPreview resolves a replied-to message down to its content and
// sender name. Deleted targets still resolve, carrying the tombstone.
func loadReplyPreview(messageID string) *models.Message {
	var m models.Message
	if err := database.DB.Preload("Sender").First(&m, "id = ?", messageID).Error; err != nil {
		return nil
	}
	return &models.Message{
		ID:      m.ID,
		Content: m.Content,
		Sender:  models.User{ID: m.Sender.ID, Name: m.Sender.Name},
	}
}

func attachReplyPreviews(messages []models.Message) {
	for i := range messages {
		if messages[i].ReplyToID != nil {
			messages[i].ReplyTo = loadReplyPreview(*messages[i].ReplyToID)
		}
	}
}

// SearchMessages does a case-insensitive substring search within a scope.
// An empty term is not an error; it returns no results.
func SearchMessages(chatType models.ChatType, term, workspaceID, projectID string, participants []string, limit int) ([]models.Message, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Message{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	db, err := scopeFilter(database.DB.Model(&models.Message{}), chatType, workspaceID, projectID, participants)
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	err = db.
		Where("is_deleted = ?", false).
		Where("LOWER(content) LIKE ?", "%"+strings.ToLower(term)+"%").
		Preload("Sender").
		Order("created_at desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// editScope restricts a mutation to the caller's current workspace.
// Messages outside it (including direct messages while a workspace is
// active) are treated as not found; "not found" and "forbidden" are
// deliberately indistinguishable here.
func editScope(db *gorm.DB, workspaceID string) *gorm.DB {
	if workspaceID == "" {
		return db.Where("workspace_id IS NULL")
	}
	return db.Where("workspace_id = ?", workspaceID)
}

// EditMessage updates content in place when the caller owns the message
// and it sits in their current workspace scope.
func EditMessage(messageID, userID, workspaceID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.BadRequest("Message content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return nil, errors.BadRequest("Message too long (max 2000 characters)")
	}

	now := time.Now()
	res := editScope(
		database.DB.Model(&models.Message{}).
			Where("id = ? AND sender_id = ? AND is_deleted = ?", messageID, userID, false),
		workspaceID,
	).Updates(map[string]interface{}{
		"content":   content,
		"is_edited": true,
		"edited_at": now,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errors.NotFound("Message not found or cannot be edited")
	}

	var msg models.Message
	if err := database.DB.Preload("Sender").First(&msg, "id = ?", messageID).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// SoftDeleteMessage tombstones a message the caller owns. The row stays
// in place so reply references and counts keep working.
func SoftDeleteMessage(messageID, userID, workspaceID string) (*models.Message, error) {
	now := time.Now()
	res := editScope(
		database.DB.Model(&models.Message{}).
			Where("id = ? AND sender_id = ? AND is_deleted = ?", messageID, userID, false),
		workspaceID,
	).Updates(map[string]interface{}{
		"is_deleted": true,
		"deleted_at": now,
		"content":    models.DeletedMessageContent,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errors.NotFound("Message not found or cannot be deleted")
	}

	var msg models.Message
	if err := database.DB.First(&msg, "id = ?", messageID).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ToggleReaction adds the (user, emoji) reaction if absent, removes it if
// present, and returns the message's updated reaction list.
func ToggleReaction(messageID, userID, workspaceID, emoji string) ([]models.MessageReaction, error) {
	if emoji == "" {
		return nil, errors.BadRequest("Valid emoji is required")
	}

	var msg models.Message
	err := editScope(
		database.DB.Where("id = ? AND is_deleted = ?", messageID, false),
		workspaceID,
	).First(&msg).Error
	if err != nil {
		return nil, errors.NotFound("Message not found")
	}

	var existing models.MessageReaction
	err = database.DB.
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		First(&existing).Error
	if err == nil {
		if err := database.DB.Delete(&existing).Error; err != nil {
			return nil, err
		}
	} else {
		reaction := models.MessageReaction{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     emoji,
			CreatedAt: time.Now(),
		}
		if err := database.DB.Create(&reaction).Error; err != nil {
			return nil, err
		}
	}

	var reactions []models.MessageReaction
	if err := database.DB.
		Preload("User").
		Where("message_id = ?", messageID).
		Order("created_at asc").
		Find(&reactions).Error; err != nil {
		return nil, err
	}
	return reactions, nil
}

// MarkMessagesRead is a placeholder for read receipts: it only refreshes
// the caller's lastSeen. No per-conversation cursor is tracked.
func MarkMessagesRead(userID string, lastMessageID string) error {
	now := time.Now()
	return database.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen", now).Error
}

type WorkspaceStats struct {
	TotalMessages int64 `json:"totalMessages"`
	TodayMessages int64 `json:"todayMessages"`
	ActiveUsers   int64 `json:"activeUsers"`
}

// GetWorkspaceStats runs the three aggregates concurrently: lifetime
// count, count since local midnight, distinct senders over 7 days.
func GetWorkspaceStats(workspaceID string) (*WorkspaceStats, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)

	stats := &WorkspaceStats{}
	errs := make([]error, 3)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		errs[0] = database.DB.Model(&models.Message{}).
			Where("workspace_id = ? AND chat_type = ? AND is_deleted = ?", workspaceID, models.ChatTypeWorkspace, false).
			Count(&stats.TotalMessages).Error
	}()
	go func() {
		defer wg.Done()
		errs[1] = database.DB.Model(&models.Message{}).
			Where("workspace_id = ? AND chat_type = ? AND is_deleted = ? AND created_at >= ?", workspaceID, models.ChatTypeWorkspace, false, midnight).
			Count(&stats.TodayMessages).Error
	}()
	go func() {
		defer wg.Done()
		errs[2] = database.DB.Model(&models.Message{}).
			Where("workspace_id = ? AND chat_type = ? AND is_deleted = ? AND created_at >= ?", workspaceID, models.ChatTypeWorkspace, false, weekAgo).
			Distinct("sender_id").
			Count(&stats.ActiveUsers).Error
	}()

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// DirectConversation summarizes one direct thread for the caller.
// UnreadCount is the participant heuristic the product ships with: every
// message the caller did not send counts, since no read cursor exists.
type DirectConversation struct {
	OtherUser   models.User    `json:"otherUser"`
	LastMessage models.Message `json:"lastMessage"`
	UnreadCount int64          `json:"unreadCount"`
}

// GetDirectConversations groups the caller's direct messages by
// participant pair, newest conversation first.
func GetDirectConversations(userID string) ([]DirectConversation, error) {
	var messages []models.Message
	err := database.DB.
		Where("chat_type = ? AND is_deleted = ?", models.ChatTypeDirect, false).
		Where("participant_a_id = ? OR participant_b_id = ?", userID, userID).
		Preload("Sender").
		Order("created_at desc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	type group struct {
		last   models.Message
		unread int64
		other  string
	}
	groups := make(map[string]*group)
	var order []string

	for _, m := range messages {
		pair := m.Participants()
		if pair == nil {
			continue
		}
		key := pair[0] + ":" + pair[1]
		g, ok := groups[key]
		if !ok {
			other := pair[0]
			if other == userID {
				other = pair[1]
			}
			g = &group{last: m, other: other}
			groups[key] = g
			order = append(order, key)
		}
		if m.SenderID != userID {
			g.unread++
		}
	}

	conversations := make([]DirectConversation, 0, len(order))
	for _, key := range order {
		g := groups[key]
		var other models.User
		if err := database.DB.First(&other, "id = ?", g.other).Error; err != nil {
			logger.Warn().Str("userId", g.other).Msg("direct conversation references missing user")
			continue
		}
		conversations = append(conversations, DirectConversation{
			OtherUser:   other,
			LastMessage: g.last,
			UnreadCount: g.unread,
		})
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.CreatedAt.After(conversations[j].LastMessage.CreatedAt)
	})
	return conversations, nil
}

// OnlineUser is the presence view of a workspace member.
type OnlineUser struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	ProfilePicture string     `json:"profilePicture"`
	IsOnline       bool       `json:"isOnline"`
	LastSeen       *time.Time `json:"lastSeen"`
	Role           string     `json:"role"`
}

// GetOnlineUsers lists workspace members whose persisted presence flag
// is set.
func GetOnlineUsers(workspaceID string) ([]OnlineUser, error) {
	var members []models.Member
	err := database.DB.
		Preload("User").
		Preload("Role").
		Where("workspace_id = ?", workspaceID).
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	online := make([]OnlineUser, 0)
	for _, m := range members {
		if !m.User.IsOnline {
			continue
		}
		online = append(online, OnlineUser{
			ID:             m.User.ID,
			Name:           m.User.Name,
			ProfilePicture: m.User.ProfilePicture,
			IsOnline:       true,
			LastSeen:       m.User.LastSeen,
			Role:           string(m.Role.Name),
		})
	}
	return online, nil
}

// ChatMember is the member view used by the chat sidebar.
type ChatMember struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	ProfilePicture string     `json:"profilePicture"`
	IsOnline       bool       `json:"isOnline"`
	LastSeen       *time.Time `json:"lastSeen"`
	Role           string     `json:"role"`
	JoinedAt       time.Time  `json:"joinedAt"`
}

// GetWorkspaceChatMembers lists all members of a workspace with their
// presence fields, online or not.
func GetWorkspaceChatMembers(workspaceID string) ([]ChatMember, error) {
	var members []models.Member
	err := database.DB.
		Preload("User").
		Preload("Role").
		Where("workspace_id = ?", workspaceID).
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	result := make([]ChatMember, 0, len(members))
	for _, m := range members {
		result = append(result, ChatMember{
			ID:             m.User.ID,
			Name:           m.User.Name,
			ProfilePicture: m.User.ProfilePicture,
			IsOnline:       m.User.IsOnline,
			LastSeen:       m.User.LastSeen,
			Role:           string(m.Role.Name),
			JoinedAt:       m.JoinedAt,
		})
	}
	return result, nil
}
