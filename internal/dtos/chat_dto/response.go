package chat_dto

import (
	"time"

	"github.com/xenn00/elearning-chat/internal/dtos/user_dto"
	"github.com/xenn00/elearning-chat/internal/entity"
)

// MessageResponse is the camelCase representation shared by the REST API and
// the websocket gateway.
type MessageResponse struct {
	ID                string                        `json:"id"`
	Text              *string                       `json:"text"`
	MessageType       string                        `json:"messageType"`
	CreatedAt         time.Time                     `json:"createdAt"`
	UpdatedAt         time.Time                     `json:"updatedAt"`
	ChatGroup         string                        `json:"chatGroup"`
	User              *user_dto.UserMinimalResponse `json:"user"`
	Files             []MessageFileResponse         `json:"files"`
	RemovedAt         *time.Time                    `json:"removedAt"`
	IsDeletedBySender bool                          `json:"isDeletedBySender"`
	IsDeletedByAdmin  bool                          `json:"isDeletedByAdmin"`
	IsRead            bool                          `json:"isRead"`
}

type MessageFileResponse struct {
	ID           string    `json:"id"`
	FileName     *string   `json:"fileName"`
	URL          *string   `json:"url"`
	FileType     string    `json:"fileType"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ListMessagesResponse struct {
	Messages   []*MessageResponse `json:"messages"`
	NextCursor *string            `json:"nextCursor"`
	HasMore    bool               `json:"hasMore"`
}

// NewMessageResponse serializes a message; lastRead is the viewer's read mark
// and decides isRead.
func NewMessageResponse(msg *entity.ChatMessage, lastRead *time.Time) *MessageResponse {
	resp := &MessageResponse{
		ID:                msg.ID,
		Text:              msg.Text,
		MessageType:       msg.MessageType,
		CreatedAt:         msg.CreatedAt,
		UpdatedAt:         msg.UpdatedAt,
		ChatGroup:         msg.ChatGroupID,
		User:              user_dto.NewUserMinimalResponse(msg.User),
		Files:             make([]MessageFileResponse, 0, len(msg.Files)),
		RemovedAt:         msg.RemovedAt,
		IsDeletedBySender: msg.IsDeletedBySender,
		IsDeletedByAdmin:  msg.IsDeletedByAdmin,
		IsRead:            lastRead != nil && msg.CreatedAt.Before(*lastRead),
	}

	for _, f := range msg.Files {
		resp.Files = append(resp.Files, MessageFileResponse{
			ID:           f.ID,
			FileName:     f.FileName,
			URL:          f.URL,
			FileType:     f.FileType,
			ThumbnailURL: f.ThumbnailURL,
			CreatedAt:    f.CreatedAt,
		})
	}

	return resp
}
