package chat_service

import (
	"context"

	"github.com/xenn00/elearning-chat/internal/dtos/chat_dto"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
)

type ChatServiceContract interface {
	PersistMessage(ctx context.Context, userID, roomID string, payload chat_dto.CreateMessageRequest) (*chat_dto.MessageResponse, *app_error.AppError)
	ListMessages(ctx context.Context, userID, roomID string, req chat_dto.ListMessagesRequest) (*chat_dto.ListMessagesResponse, *app_error.AppError)
	CheckMembership(ctx context.Context, roomID, userID string) *app_error.AppError
}
