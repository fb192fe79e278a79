package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatType string

const (
	ChatTypeWorkspace ChatType = "workspace"
	ChatTypeProject   ChatType = "project"
	ChatTypeDirect    ChatType = "direct"
)

func (t ChatType) Valid() bool {
	return t == ChatTypeWorkspace || t == ChatTypeProject || t == ChatTypeDirect
}

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

func (t MessageType) Valid() bool {
	return t == MessageTypeText || t == MessageTypeImage || t == MessageTypeFile || t == MessageTypeSystem
}

// MaxMessageLength bounds message content after trimming.
const MaxMessageLength = 2000

// DeletedMessageContent replaces the content of soft-deleted messages.
const DeletedMessageContent = "This message was deleted"

// Message is a chat message in exactly one scope: a workspace room, a
// project room, or a direct conversation between two users. Which scoping
// columns are set is determined by ChatType. Rows are never physically
// removed; deletion flips IsDeleted and tombstones the content so reply
// references stay resolvable.
type Message struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Content  string   `gorm:"type:text;not null" json:"content"`
	SenderID string   `gorm:"index;type:text;not null" json:"senderId"`
	Sender   User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ChatType ChatType `gorm:"index;type:text;not null" json:"chatType"`

	// Scope columns. Workspace is set for workspace and project chats,
	// Project only for project chats.
	WorkspaceID *string    `gorm:"index;type:text" json:"workspace,omitempty"`
	Workspace   *Workspace `gorm:"foreignKey:WorkspaceID" json:"-"`
	ProjectID   *string    `gorm:"index;type:text" json:"project,omitempty"`
	Project     *Project   `gorm:"foreignKey:ProjectID" json:"-"`

	// Direct conversations store both participants in canonical order
	// (ParticipantAID < ParticipantBID) so either side derives the same
	// conversation identity.
	ParticipantAID *string `gorm:"index:idx_message_participants;type:text" json:"-"`
	ParticipantBID *string `gorm:"index:idx_message_participants;type:text" json:"-"`

	MessageType MessageType `gorm:"type:text;default:'text';not null" json:"messageType"`

	ReplyToID *string  `gorm:"index;type:text" json:"replyToId,omitempty"`
	ReplyTo   *Message `gorm:"-" json:"replyTo,omitempty"`

	IsEdited  bool       `gorm:"default:false" json:"isEdited"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
	IsDeleted bool       `gorm:"index;default:false" json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`

	Reactions []MessageReaction `gorm:"foreignKey:MessageID" json:"reactions"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// Participants returns the direct-conversation pair, or nil for other
// chat types.
func (m *Message) Participants() []string {
	if m.ParticipantAID == nil || m.ParticipantBID == nil {
		return nil
	}
	return []string{*m.ParticipantAID, *m.ParticipantBID}
}

// SetParticipants stores a direct pair in canonical sorted order.
func (m *Message) SetParticipants(a, b string) {
	if b < a {
		a, b = b, a
	}
	m.ParticipantAID = &a
	m.ParticipantBID = &b
}

// MessageReaction is one (user, emoji) pair on a message. Identity is
// enforced by toggle logic in the service, not a unique constraint.
type MessageReaction struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	MessageID string    `gorm:"index;type:text;not null" json:"messageId"`
	UserID    string    `gorm:"index;type:text;not null" json:"userId"`
	Emoji     string    `gorm:"type:text;not null" json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`

	Message Message `gorm:"foreignKey:MessageID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (r *MessageReaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
