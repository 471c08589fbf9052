package worker

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/xenn00/elearning-chat/internal/queue"
	chat_repo "github.com/xenn00/elearning-chat/internal/repo/chat"
)

// NewMembershipActivityHandler updates unread counters and read marks of a
// room after one of its messages commits.
func NewMembershipActivityHandler(repo chat_repo.ChatRepoContract) JobHandler {
	return func(ctx context.Context, raw jsoniter.RawMessage) error {
		var payload queue.MembershipActivityPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("invalid membership activity payload: %w", err)
		}
		if payload.RoomID == "" || payload.SenderID == "" {
			return fmt.Errorf("membership activity payload is missing room or sender")
		}

		if err := repo.RecordMessageActivity(ctx, payload.RoomID, payload.SenderID, payload.MessageID, payload.SentAt); err != nil {
			return fmt.Errorf("record membership activity: %s", err.Message)
		}
		return nil
	}
}
