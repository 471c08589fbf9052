package chat_service

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/internal/dtos/chat_dto"
	"github.com/xenn00/elearning-chat/internal/entity"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
	"github.com/xenn00/elearning-chat/internal/queue"
	chat_repo "github.com/xenn00/elearning-chat/internal/repo/chat"
	"github.com/xenn00/elearning-chat/state"
)

const (
	defaultPageSize = 20
	activityJobTTL  = time.Hour
)

type ChatService struct {
	AppState *state.AppState
	ChatRepo chat_repo.ChatRepoContract
	Producer queue.Producer
	MaxRetry int
	validate *validator.Validate
}

// NewChatService wires the repo; producer may be nil, in which case
// membership activity is not tracked.
func NewChatService(appState *state.AppState, producer queue.Producer, maxRetry int) ChatServiceContract {
	return &ChatService{
		AppState: appState,
		ChatRepo: chat_repo.NewChatRepo(appState),
		Producer: producer,
		MaxRetry: maxRetry,
		validate: chat_dto.NewValidator(),
	}
}

func (c *ChatService) PersistMessage(ctx context.Context, userID, roomID string, payload chat_dto.CreateMessageRequest) (*chat_dto.MessageResponse, *app_error.AppError) {
	payload.Normalize()
	if err := c.validate.Struct(payload); err != nil {
		return nil, app_error.FromValidation(err)
	}
	if !payload.HasContent() {
		return nil, app_error.NewValidationError("message must contain text or at least one file", "text")
	}

	if _, err := c.ChatRepo.FindRoomByID(ctx, roomID); err != nil {
		if err.Code == http.StatusNotFound {
			return nil, app_error.NewValidationError("chat group does not exist", "chat_group")
		}
		return nil, err
	}

	membership, err := c.ChatRepo.FindMembership(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	msg := &entity.ChatMessage{
		ChatGroupID: roomID,
		UserID:      &userID,
		CreatedBy:   &userID,
		MessageType: payload.MessageType,
		Text:        payload.Text,
	}
	files := make([]entity.MessageFile, 0, len(payload.Files))
	for _, f := range payload.Files {
		files = append(files, entity.MessageFile{
			URL:          f.URL,
			FileType:     f.FileType,
			FileName:     f.FileName,
			ThumbnailURL: f.ThumbnailURL,
		})
	}

	stored, err := c.ChatRepo.CreateMessage(ctx, msg, files)
	if err != nil {
		return nil, err
	}

	c.enqueueActivity(ctx, stored)

	var lastRead *time.Time
	if membership != nil {
		lastRead = membership.LastRead
	}

	return chat_dto.NewMessageResponse(stored, lastRead), nil
}

func (c *ChatService) enqueueActivity(ctx context.Context, msg *entity.ChatMessage) {
	if c.Producer == nil || msg.UserID == nil {
		return
	}

	job := queue.NewJob(queue.JobMembershipActivity, queue.MembershipActivityPayload{
		RoomID:    msg.ChatGroupID,
		SenderID:  *msg.UserID,
		MessageID: msg.ID,
		SentAt:    msg.CreatedAt,
	}, c.MaxRetry, activityJobTTL)

	if err := c.Producer.Enqueue(ctx, job); err != nil {
		log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to enqueue membership activity")
	}
}

func (c *ChatService) ListMessages(ctx context.Context, userID, roomID string, req chat_dto.ListMessagesRequest) (*chat_dto.ListMessagesResponse, *app_error.AppError) {
	if err := c.validate.Struct(req); err != nil {
		return nil, app_error.FromValidation(err)
	}

	if _, err := c.ChatRepo.FindRoomByID(ctx, roomID); err != nil {
		return nil, err
	}

	membership, err := c.ChatRepo.FindMembership(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultPageSize
	}

	filter := chat_repo.MessageFilter{
		RoomID:   roomID,
		BeforeID: req.Before,
		Limit:    limit + 1,
	}
	var lastRead *time.Time
	if membership != nil {
		filter.ClearedAfter = membership.Cleared
		lastRead = membership.LastRead
	}

	messages, err := c.ChatRepo.ListMessages(ctx, filter)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	resp := &chat_dto.ListMessagesResponse{
		Messages: make([]*chat_dto.MessageResponse, 0, len(messages)),
		HasMore:  hasMore,
	}
	for i := range messages {
		resp.Messages = append(resp.Messages, chat_dto.NewMessageResponse(&messages[i], lastRead))
	}
	if hasMore {
		cursor := messages[len(messages)-1].ID
		resp.NextCursor = &cursor
	}

	return resp, nil
}

// CheckMembership rejects users who are not members of the room or who are
// blocked or suspended in it.
func (c *ChatService) CheckMembership(ctx context.Context, roomID, userID string) *app_error.AppError {
	membership, err := c.ChatRepo.FindMembership(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return app_error.NewAppError(http.StatusForbidden, "not a member of this chat", "membership")
	}
	if !membership.CanParticipate() {
		return app_error.NewAppError(http.StatusForbidden, "membership is blocked or suspended", "membership")
	}
	return nil
}
