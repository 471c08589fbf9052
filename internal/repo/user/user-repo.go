package user_repo

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/internal/entity"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
	"github.com/xenn00/elearning-chat/state"
	"gorm.io/gorm"
)

type UserRepo struct {
	AppState *state.AppState
}

func NewUserRepo(appState *state.AppState) UserRepoContract {
	return &UserRepo{
		AppState: appState,
	}
}

func (r *UserRepo) FindUserByID(ctx context.Context, userID string) (*entity.User, *app_error.AppError) {
	var user entity.User

	if err := r.AppState.DB.WithContext(ctx).Preload("Profile").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NewAppError(http.StatusNotFound, "cannot find user", "user-id")
		}
		log.Error().Err(err).Str("user_id", userID).Msg("failed to fetch user")
		return nil, app_error.NewAppError(http.StatusInternalServerError, "unexpected error occur when fetch user", "db-error")
	}

	return &user, nil
}
