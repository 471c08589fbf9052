package chat_repo

import (
	"context"
	"time"

	"github.com/xenn00/elearning-chat/internal/entity"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
)

type ChatRepoContract interface {
	FindRoomByID(ctx context.Context, roomID string) (*entity.ChatGroup, *app_error.AppError)
	FindMembership(ctx context.Context, roomID, userID string) (*entity.ChatMembership, *app_error.AppError)
	CreateMessage(ctx context.Context, msg *entity.ChatMessage, files []entity.MessageFile) (*entity.ChatMessage, *app_error.AppError)
	ListMessages(ctx context.Context, filter MessageFilter) ([]entity.ChatMessage, *app_error.AppError)
	RecordMessageActivity(ctx context.Context, roomID, senderID, messageID string, at time.Time) *app_error.AppError
}

// MessageFilter selects a page of a room's history, newest first.
type MessageFilter struct {
	RoomID       string
	ClearedAfter *time.Time
	BeforeID     *string
	Limit        int
}
