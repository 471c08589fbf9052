package chat_dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestCreateMessageRequest_Normalize(t *testing.T) {
	req := CreateMessageRequest{
		Text:  strPtr("   "),
		Files: []FileRequest{{URL: strPtr("https://cdn.example.com/a.pdf")}},
	}
	req.Normalize()

	assert.Equal(t, "text", req.MessageType)
	assert.Nil(t, req.Text, "blank text is treated as missing")
	assert.Equal(t, "image", req.Files[0].FileType)
	assert.True(t, req.HasContent())

	empty := CreateMessageRequest{}
	empty.Normalize()
	assert.False(t, empty.HasContent())
}

func TestCreateMessageRequest_Validation(t *testing.T) {
	validate := NewValidator()

	valid := CreateMessageRequest{Text: strPtr("hello"), MessageType: "text"}
	assert.NoError(t, validate.Struct(valid))

	badType := CreateMessageRequest{Text: strPtr("hello"), MessageType: "gif"}
	err := validate.Struct(badType)
	require.Error(t, err)
	assert.Equal(t, "oneof", app_error.FromValidation(err).Details["message_type"])

	badFile := CreateMessageRequest{Files: []FileRequest{
		{URL: strPtr("https://cdn.example.com/ok.png"), FileType: "image"},
		{URL: strPtr("not-a-url"), FileType: "image"},
	}}
	err = validate.Struct(badFile)
	require.Error(t, err)
	assert.Equal(t, "url", app_error.FromValidation(err).Details["files[1].url"])

	longName := CreateMessageRequest{Files: []FileRequest{{FileName: strPtr(strings.Repeat("a", 201)), FileType: "document"}}}
	assert.Error(t, validate.Struct(longName))
}

func TestRestCreateMessageRequest_ToPayload(t *testing.T) {
	rest := RestCreateMessageRequest{
		Text:        strPtr("hi"),
		MessageType: "document",
		Files: []RestFileRequest{{
			URL:          strPtr("https://cdn.example.com/notes.pdf"),
			FileType:     "document",
			FileName:     strPtr("notes.pdf"),
			ThumbnailURL: strPtr("https://cdn.example.com/notes.png"),
		}},
	}

	payload := rest.ToPayload()
	assert.Equal(t, "document", payload.MessageType)
	require.Len(t, payload.Files, 1)
	assert.Equal(t, "notes.pdf", *payload.Files[0].FileName)
	assert.Equal(t, "https://cdn.example.com/notes.png", *payload.Files[0].ThumbnailURL)
}

func TestCreateMessageRequest_SizeLimits(t *testing.T) {
	validate := NewValidator()

	longText := CreateMessageRequest{Text: strPtr(strings.Repeat("x", 10001)), MessageType: "text"}
	err := validate.Struct(longText)
	require.Error(t, err)
	assert.Equal(t, "max", app_error.FromValidation(err).Details["text"])

	files := make([]FileRequest, 21)
	for i := range files {
		files[i] = FileRequest{FileType: "image"}
	}
	tooMany := CreateMessageRequest{MessageType: "image", Files: files}
	err = validate.Struct(tooMany)
	require.Error(t, err)
	assert.Equal(t, "max", app_error.FromValidation(err).Details["files"])

	atLimit := CreateMessageRequest{MessageType: "image", Files: files[:20]}
	assert.NoError(t, validate.Struct(atLimit))
}
