package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChatTypeGroup      = "group"
	ChatTypeIndividual = "individual"

	MessageTypeText = "text"
	FileTypeImage   = "image"
)

type ChatGroup struct {
	ID          string     `gorm:"primaryKey"`
	CourseID    *string    `gorm:"index"`
	AdminID     *string    `gorm:"index"`
	Name        string     `gorm:"size:100;not null"`
	Photo       *string    `gorm:"size:200"`
	Description *string    `gorm:"type:text"`
	ChatType    string     `gorm:"size:20;not null;default:individual"`
	IsActive    bool       `gorm:"not null"`
	IsPublic    bool       `gorm:"not null;default:false"`
	IsDeleted   bool       `gorm:"not null;default:false"`
	CreatedBy   *string    `gorm:"index"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
	RemovedAt   *time.Time `gorm:"index"`
}

func (ChatGroup) TableName() string { return "tb_chat_groups" }

func (g *ChatGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// ChatMembership is unique per (chat group, user).
type ChatMembership struct {
	ID             string     `gorm:"primaryKey"`
	ChatGroupID    string     `gorm:"not null;uniqueIndex:idx_membership_group_user"`
	UserID         string     `gorm:"not null;uniqueIndex:idx_membership_group_user"`
	LastRead       *time.Time `gorm:"index"`
	UnreadMessages int        `gorm:"not null;default:0"`
	Cleared        *time.Time `gorm:"index"`
	LastDate       *time.Time `gorm:"index"`
	IsActive       bool       `gorm:"not null;default:false"`
	IsBlocked      bool       `gorm:"not null;default:false"`
	IsSuspended    bool       `gorm:"not null;default:false"`
	IsAdmin        bool       `gorm:"not null;default:false"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
}

func (ChatMembership) TableName() string { return "tb_chat_memberships" }

func (m *ChatMembership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// CanParticipate is false for blocked or suspended members.
func (m *ChatMembership) CanParticipate() bool {
	return !m.IsBlocked && !m.IsSuspended
}

// ChatMessage is immutable after creation apart from the soft-delete flags.
type ChatMessage struct {
	ID                string     `gorm:"primaryKey"`
	ChatGroupID       string     `gorm:"not null;index"`
	UserID            *string    `gorm:"index"`
	MessageType       string     `gorm:"size:10;not null;default:text"`
	Text              *string    `gorm:"type:text"`
	IsDeletedBySender bool       `gorm:"not null;default:false"`
	IsDeletedByAdmin  bool       `gorm:"not null;default:false"`
	CreatedBy         *string    `gorm:"index"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
	RemovedAt         *time.Time `gorm:"index"`

	ChatGroup *ChatGroup    `gorm:"constraint:OnDelete:CASCADE"`
	User      *User         `gorm:"constraint:OnDelete:SET NULL"`
	Files     []MessageFile `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (ChatMessage) TableName() string { return "tb_chat_messages" }

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type MessageFile struct {
	ID           string    `gorm:"primaryKey"`
	MessageID    string    `gorm:"not null;index"`
	URL          *string   `gorm:"size:200"`
	FileType     string    `gorm:"size:10;not null;default:image"`
	FileName     *string   `gorm:"size:200"`
	ThumbnailURL *string   `gorm:"size:2000"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (MessageFile) TableName() string { return "tb_message_files" }

func (f *MessageFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// ChatMessageRead marks a message as read by a user.
type ChatMessageRead struct {
	ID        string    `gorm:"primaryKey"`
	MessageID string    `gorm:"not null;uniqueIndex:idx_message_read_user"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_message_read_user"`
	ReadAt    time.Time `gorm:"autoUpdateTime"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatMessageRead) TableName() string { return "tb_chat_message_reads" }

func (r *ChatMessageRead) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Models lists every table the gateway migrates.
func Models() []any {
	return []any{
		&User{},
		&UserProfile{},
		&ChatGroup{},
		&ChatMembership{},
		&ChatMessage{},
		&MessageFile{},
		&ChatMessageRead{},
	}
}
