package queue

import (
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	PriorityQueueKey = "priority_queue"
	DeadLetterKey    = "priority_queue_dlq"

	JobMembershipActivity = "chat_membership_activity"
)

type Job struct {
	ID        string              `json:"id"`
	Type      string              `json:"type"`
	Payload   jsoniter.RawMessage `json:"payload"`
	Retry     int                 `json:"retry"`
	MaxRetry  int                 `json:"max_retry"`
	ErrorMsg  string              `json:"error_msg,omitempty"`
	CreatedAt int64               `json:"created_at"`
	RunAt     int64               `json:"run_at"`
	ExpireAt  int64               `json:"expired_at"`
}

// MembershipActivityPayload is enqueued after a chat message commits.
type MembershipActivityPayload struct {
	RoomID    string    `json:"room_id"`
	SenderID  string    `json:"sender_id"`
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

// NewJob builds a job that is due immediately and expires after ttl.
func NewJob(jobType string, payload any, maxRetry int, ttl time.Duration) Job {
	now := time.Now()
	return Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Payload:   MustMarshal(payload),
		MaxRetry:  maxRetry,
		CreatedAt: now.Unix(),
		RunAt:     now.Unix(),
		ExpireAt:  now.Add(ttl).Unix(),
	}
}

func MustMarshal(payload any) jsoniter.RawMessage {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil
	}

	return b
}
