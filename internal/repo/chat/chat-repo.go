package chat_repo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/internal/entity"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
	"github.com/xenn00/elearning-chat/state"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepo struct {
	AppState *state.AppState
}

func NewChatRepo(appState *state.AppState) ChatRepoContract {
	return &ChatRepo{
		AppState: appState,
	}
}

func (r *ChatRepo) FindRoomByID(ctx context.Context, roomID string) (*entity.ChatGroup, *app_error.AppError) {
	var room entity.ChatGroup
	if err := r.AppState.DB.WithContext(ctx).Where("id = ? AND is_deleted = ?", roomID, false).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NewAppError(http.StatusNotFound, "room not found", "not-found")
		}
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to fetch room")
		return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to fetch room", "db-error")
	}
	return &room, nil
}

// FindMembership returns nil without error when the user is not a member.
func (r *ChatRepo) FindMembership(ctx context.Context, roomID, userID string) (*entity.ChatMembership, *app_error.AppError) {
	var membership entity.ChatMembership
	err := r.AppState.DB.WithContext(ctx).
		Where("chat_group_id = ? AND user_id = ?", roomID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Error().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("failed to fetch membership")
		return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to fetch membership", "db-error")
	}
	return &membership, nil
}

// CreateMessage writes the message and its files in one transaction and
// returns the stored message with files and author loaded.
func (r *ChatRepo) CreateMessage(ctx context.Context, msg *entity.ChatMessage, files []entity.MessageFile) (*entity.ChatMessage, *app_error.AppError) {
	err := r.AppState.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(msg).Error; err != nil {
			return err
		}

		if len(files) == 0 {
			return nil
		}
		for i := range files {
			files[i].MessageID = msg.ID
		}
		return tx.Create(&files).Error
	})
	if err != nil {
		log.Error().Err(err).Str("room_id", msg.ChatGroupID).Msg("failed to create message")
		return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to create message", "db-error")
	}

	var stored entity.ChatMessage
	if err := r.withMessageRelations(r.AppState.DB.WithContext(ctx)).Where("id = ?", msg.ID).First(&stored).Error; err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("failed to reload message")
		return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to load created message", "db-error")
	}

	return &stored, nil
}

func (r *ChatRepo) ListMessages(ctx context.Context, filter MessageFilter) ([]entity.ChatMessage, *app_error.AppError) {
	db := r.AppState.DB.WithContext(ctx)
	query := r.withMessageRelations(db).Where("chat_group_id = ?", filter.RoomID)

	if filter.ClearedAfter != nil {
		query = query.Where("created_at > ?", *filter.ClearedAfter)
	}

	if filter.BeforeID != nil {
		var cursor entity.ChatMessage
		if err := db.Select("id", "created_at").Where("id = ? AND chat_group_id = ?", *filter.BeforeID, filter.RoomID).First(&cursor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, app_error.NewValidationError("unknown cursor", "before")
			}
			return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to resolve cursor", "db-error")
		}
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var messages []entity.ChatMessage
	if err := query.Order("created_at DESC").Order("id DESC").Limit(filter.Limit).Find(&messages).Error; err != nil {
		log.Error().Err(err).Str("room_id", filter.RoomID).Msg("failed to list messages")
		return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to fetch messages", "db-error")
	}

	return messages, nil
}

// RecordMessageActivity bumps the unread counter of every other member,
// marks the room read for the sender and records the sender's read of
// messageID. Read marks and last dates only move forward, so jobs may be
// applied in any order.
func (r *ChatRepo) RecordMessageActivity(ctx context.Context, roomID, senderID, messageID string, at time.Time) *app_error.AppError {
	at = at.UTC()

	err := r.AppState.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.ChatMembership{}).
			Where("chat_group_id = ? AND user_id <> ?", roomID, senderID).
			Updates(map[string]any{
				"unread_messages": gorm.Expr("unread_messages + ?", 1),
				"last_date":       latest("last_date", at),
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&entity.ChatMembership{}).
			Where("chat_group_id = ? AND user_id = ?", roomID, senderID).
			Updates(map[string]any{
				"unread_messages": gorm.Expr("CASE WHEN last_read IS NULL OR last_read <= ? THEN 0 ELSE unread_messages END", at),
				"last_read":       latest("last_read", at),
				"last_date":       latest("last_date", at),
			}).Error; err != nil {
			return err
		}

		if messageID == "" {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&entity.ChatMessageRead{
			MessageID: messageID,
			UserID:    senderID,
			ReadAt:    at,
			IsActive:  true,
		}).Error
	})
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to update membership activity")
		return app_error.NewAppError(http.StatusInternalServerError, "failed to update membership activity", "db-error")
	}

	return nil
}

// latest keeps column unless at is newer.
func latest(column string, at time.Time) clause.Expr {
	return gorm.Expr("CASE WHEN "+column+" IS NULL OR "+column+" < ? THEN ? ELSE "+column+" END", at, at)
}

func (r *ChatRepo) withMessageRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Files", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("User.Profile")
}
