package chat_dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    InboundFrame
		wantErr error
	}{
		{
			name: "typing",
			raw:  `{"action":"chat_typing","data":{}}`,
			want: ChatTypingFrame{},
		},
		{
			name: "unknown action",
			raw:  `{"action":"chat_reaction","data":{"emoji":"+1"}}`,
			want: UnknownFrame{Action: "chat_reaction"},
		},
		{name: "not json", raw: `hello`, wantErr: ErrMalformedFrame},
		{name: "missing action", raw: `{"data":{}}`, wantErr: ErrMissingAction},
		{name: "empty action", raw: `{"action":"","data":{}}`, wantErr: ErrMissingAction},
		{name: "missing data", raw: `{"action":"chat_typing"}`, wantErr: ErrMissingData},
		{name: "null data", raw: `{"action":"chat_typing","data":null}`, wantErr: ErrMissingData},
		{name: "data not an object", raw: `{"action":"chat_message","data":"hi"}`, wantErr: ErrMalformedFrame},
		{name: "payload with wrong types", raw: `{"action":"chat_message","data":{"files":"nope"}}`, wantErr: ErrMalformedFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := DecodeInbound([]byte(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, frame)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, frame)
		})
	}
}

func TestDecodeInbound_ChatMessagePayload(t *testing.T) {
	raw := `{"action":"chat_message","data":{"text":"hi","message_type":"image","files":[{"url":"https://cdn.example.com/a.png","file_type":"image"}]}}`

	frame, err := DecodeInbound([]byte(raw))
	require.NoError(t, err)

	msg, ok := frame.(ChatMessageFrame)
	require.True(t, ok)
	require.NotNil(t, msg.Payload.Text)
	assert.Equal(t, "hi", *msg.Payload.Text)
	assert.Equal(t, "image", msg.Payload.MessageType)
	require.Len(t, msg.Payload.Files, 1)
	assert.Equal(t, "https://cdn.example.com/a.png", *msg.Payload.Files[0].URL)
}
