package chat_repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/elearning-chat/internal/entity"
	"github.com/xenn00/elearning-chat/state"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func newTestRepo(t *testing.T) (*ChatRepo, *gorm.DB) {
	t.Helper()
	db, sqlDB, err := state.InitDatabase(state.DriverSqlite, ":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Create(&entity.User{ID: "u1", Email: "a@example.com", IsActive: true,
		Profile: &entity.UserProfile{FirstName: "Ada", LastName: "Lovelace"}}).Error)
	require.NoError(t, db.Create(&entity.User{ID: "u2", Email: "b@example.com", IsActive: true}).Error)
	require.NoError(t, db.Create(&entity.ChatGroup{ID: "r1", Name: "Algebra I", IsActive: true}).Error)

	return &ChatRepo{AppState: &state.AppState{DB: db}}, db
}

func TestFindRoomByID(t *testing.T) {
	repo, _ := newTestRepo(t)

	room, appErr := repo.FindRoomByID(context.Background(), "r1")
	require.Nil(t, appErr)
	assert.Equal(t, "Algebra I", room.Name)

	_, appErr = repo.FindRoomByID(context.Background(), "missing")
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestFindMembership(t *testing.T) {
	repo, db := newTestRepo(t)
	require.NoError(t, db.Create(&entity.ChatMembership{ChatGroupID: "r1", UserID: "u1"}).Error)

	membership, appErr := repo.FindMembership(context.Background(), "r1", "u1")
	require.Nil(t, appErr)
	require.NotNil(t, membership)
	assert.Equal(t, "u1", membership.UserID)

	none, appErr := repo.FindMembership(context.Background(), "r1", "u2")
	assert.Nil(t, appErr)
	assert.Nil(t, none)
}

func TestCreateMessage_WithFiles(t *testing.T) {
	repo, db := newTestRepo(t)

	msg := &entity.ChatMessage{ChatGroupID: "r1", UserID: strPtr("u1"), MessageType: "image", Text: strPtr("look")}
	files := []entity.MessageFile{
		{URL: strPtr("https://cdn.example.com/1.png"), FileType: "image"},
		{URL: strPtr("https://cdn.example.com/2.png"), FileType: "image"},
	}

	stored, appErr := repo.CreateMessage(context.Background(), msg, files)
	require.Nil(t, appErr)
	assert.NotEmpty(t, stored.ID)
	assert.Len(t, stored.Files, 2)
	require.NotNil(t, stored.User)
	require.NotNil(t, stored.User.Profile)
	assert.Equal(t, "Ada", stored.User.Profile.FirstName)

	var fileCount int64
	db.Model(&entity.MessageFile{}).Where("message_id = ?", stored.ID).Count(&fileCount)
	assert.EqualValues(t, 2, fileCount)
}

func TestCreateMessage_FileFailureRollsBack(t *testing.T) {
	repo, db := newTestRepo(t)

	err := db.Callback().Create().Before("gorm:create").Register("test:fail_files", func(tx *gorm.DB) {
		if tx.Statement.Table == "tb_message_files" {
			tx.AddError(errors.New("storage unavailable"))
		}
	})
	require.NoError(t, err)

	msg := &entity.ChatMessage{ChatGroupID: "r1", UserID: strPtr("u1"), Text: strPtr("with attachment")}
	files := []entity.MessageFile{{URL: strPtr("https://cdn.example.com/1.png"), FileType: "image"}}

	stored, appErr := repo.CreateMessage(context.Background(), msg, files)
	assert.Nil(t, stored)
	require.NotNil(t, appErr)
	assert.Equal(t, 500, appErr.Code)

	var messageCount, fileCount int64
	db.Model(&entity.ChatMessage{}).Count(&messageCount)
	db.Model(&entity.MessageFile{}).Count(&fileCount)
	assert.Zero(t, messageCount)
	assert.Zero(t, fileCount)
}

func TestListMessages_ClearedAndCursor(t *testing.T) {
	repo, db := newTestRepo(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"m1", "m2", "m3", "m4"} {
		require.NoError(t, db.Create(&entity.ChatMessage{
			ID:          id,
			ChatGroupID: "r1",
			UserID:      strPtr("u1"),
			MessageType: "text",
			Text:        strPtr(id),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	all, appErr := repo.ListMessages(context.Background(), MessageFilter{RoomID: "r1", Limit: 10})
	require.Nil(t, appErr)
	require.Len(t, all, 4)
	assert.Equal(t, "m4", all[0].ID)

	cleared := base.Add(30 * time.Second)
	visible, appErr := repo.ListMessages(context.Background(), MessageFilter{RoomID: "r1", ClearedAfter: &cleared, Limit: 10})
	require.Nil(t, appErr)
	assert.Len(t, visible, 3)

	page, appErr := repo.ListMessages(context.Background(), MessageFilter{RoomID: "r1", BeforeID: strPtr("m3"), Limit: 1})
	require.Nil(t, appErr)
	require.Len(t, page, 1)
	assert.Equal(t, "m2", page[0].ID)

	_, appErr = repo.ListMessages(context.Background(), MessageFilter{RoomID: "r1", BeforeID: strPtr("nope"), Limit: 1})
	require.NotNil(t, appErr)
	assert.True(t, appErr.IsValidation())
}

func TestRecordMessageActivity(t *testing.T) {
	repo, db := newTestRepo(t)
	require.NoError(t, db.Create(&entity.ChatMembership{ChatGroupID: "r1", UserID: "u1", UnreadMessages: 3}).Error)
	require.NoError(t, db.Create(&entity.ChatMembership{ChatGroupID: "r1", UserID: "u2", UnreadMessages: 1}).Error)

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.Nil(t, repo.RecordMessageActivity(context.Background(), "r1", "u1", "", at))

	sender, _ := repo.FindMembership(context.Background(), "r1", "u1")
	other, _ := repo.FindMembership(context.Background(), "r1", "u2")

	assert.Zero(t, sender.UnreadMessages)
	require.NotNil(t, sender.LastRead)
	assert.True(t, sender.LastRead.Equal(at))

	assert.Equal(t, 2, other.UnreadMessages)
	assert.Nil(t, other.LastRead)
	require.NotNil(t, other.LastDate)
	assert.True(t, other.LastDate.Equal(at))
}

func TestRecordMessageActivity_OlderActivityDoesNotRewind(t *testing.T) {
	repo, db := newTestRepo(t)
	require.NoError(t, db.Create(&entity.ChatMembership{ChatGroupID: "r1", UserID: "u1"}).Error)
	require.NoError(t, db.Create(&entity.ChatMembership{ChatGroupID: "r1", UserID: "u2"}).Error)

	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	require.Nil(t, repo.RecordMessageActivity(context.Background(), "r1", "u1", "", t2))
	require.Nil(t, repo.RecordMessageActivity(context.Background(), "r1", "u1", "", t1))

	sender, _ := repo.FindMembership(context.Background(), "r1", "u1")
	other, _ := repo.FindMembership(context.Background(), "r1", "u2")

	require.NotNil(t, sender.LastRead)
	assert.True(t, sender.LastRead.Equal(t2), "last_read went back to %v", sender.LastRead)
	require.NotNil(t, sender.LastDate)
	assert.True(t, sender.LastDate.Equal(t2))

	require.NotNil(t, other.LastDate)
	assert.True(t, other.LastDate.Equal(t2), "last_date went back to %v", other.LastDate)
	assert.Equal(t, 2, other.UnreadMessages)
}

func TestRecordMessageActivity_StaleJobKeepsNewerUnreadCount(t *testing.T) {
	repo, db := newTestRepo(t)
	require.NoError(t, db.Create(&entity.ChatMembership{ChatGroupID: "r1", UserID: "u1"}).Error)
	require.NoError(t, db.Create(&entity.ChatMembership{ChatGroupID: "r1", UserID: "u2"}).Error)

	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// u1 reads at t1+1m, then u2 writes at t1+2m
	require.Nil(t, repo.RecordMessageActivity(context.Background(), "r1", "u1", "", t1.Add(time.Minute)))
	require.Nil(t, repo.RecordMessageActivity(context.Background(), "r1", "u2", "", t1.Add(2*time.Minute)))
	// u1's older message is applied last
	require.Nil(t, repo.RecordMessageActivity(context.Background(), "r1", "u1", "", t1))

	sender, _ := repo.FindMembership(context.Background(), "r1", "u1")
	assert.Equal(t, 1, sender.UnreadMessages)
	assert.True(t, sender.LastRead.Equal(t1.Add(time.Minute)))
	assert.True(t, sender.LastDate.Equal(t1.Add(2*time.Minute)))
}

func TestRecordMessageActivity_RecordsSenderReadOnce(t *testing.T) {
	repo, db := newTestRepo(t)
	require.NoError(t, db.Create(&entity.ChatMembership{ChatGroupID: "r1", UserID: "u1"}).Error)

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.Nil(t, repo.RecordMessageActivity(context.Background(), "r1", "u1", "m1", at))
	require.Nil(t, repo.RecordMessageActivity(context.Background(), "r1", "u1", "m1", at.Add(time.Minute)))

	var reads []entity.ChatMessageRead
	require.NoError(t, db.Where("message_id = ?", "m1").Find(&reads).Error)
	require.Len(t, reads, 1)
	assert.Equal(t, "u1", reads[0].UserID)
	assert.True(t, reads[0].IsActive)
	assert.True(t, reads[0].ReadAt.Equal(at))
}
