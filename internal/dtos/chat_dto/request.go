package chat_dto

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xenn00/elearning-chat/internal/entity"
)

// CreateMessageRequest is the storage-native (snake_case) payload of a
// chat_message frame.
type CreateMessageRequest struct {
	Text        *string       `json:"text" validate:"omitempty,max=10000"`
	MessageType string        `json:"message_type" validate:"omitempty,oneof=text image video audio file location contact sticker document other"`
	Files       []FileRequest `json:"files" validate:"omitempty,max=20,dive"`
}

type FileRequest struct {
	URL          *string `json:"url" validate:"omitempty,url,max=200"`
	FileType     string  `json:"file_type" validate:"omitempty,oneof=image video audio document other"`
	FileName     *string `json:"file_name" validate:"omitempty,max=200"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,url,max=2000"`
}

// Normalize applies the column defaults and trims the text.
func (r *CreateMessageRequest) Normalize() {
	if r.MessageType == "" {
		r.MessageType = entity.MessageTypeText
	}
	if r.Text != nil {
		trimmed := strings.TrimSpace(*r.Text)
		if trimmed == "" {
			r.Text = nil
		} else {
			r.Text = &trimmed
		}
	}
	for i := range r.Files {
		if r.Files[i].FileType == "" {
			r.Files[i].FileType = entity.FileTypeImage
		}
	}
}

// HasContent reports whether the message carries text or at least one file.
func (r *CreateMessageRequest) HasContent() bool {
	return r.Text != nil || len(r.Files) > 0
}

// RestCreateMessageRequest is the camelCase body accepted by the REST API.
type RestCreateMessageRequest struct {
	Text        *string           `json:"text"`
	MessageType string            `json:"messageType"`
	Files       []RestFileRequest `json:"files"`
}

type RestFileRequest struct {
	URL          *string `json:"url"`
	FileType     string  `json:"fileType"`
	FileName     *string `json:"fileName"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

func (r RestCreateMessageRequest) ToPayload() CreateMessageRequest {
	payload := CreateMessageRequest{
		Text:        r.Text,
		MessageType: r.MessageType,
	}
	for _, f := range r.Files {
		payload.Files = append(payload.Files, FileRequest{
			URL:          f.URL,
			FileType:     f.FileType,
			FileName:     f.FileName,
			ThumbnailURL: f.ThumbnailURL,
		})
	}
	return payload
}

type ListMessagesRequest struct {
	Limit  int     `validate:"omitempty,min=1,max=100"`
	Before *string `validate:"omitempty,min=1"`
}

// NewValidator returns a validator that reports json field names.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}
