package user_repo

import (
	"context"

	"github.com/xenn00/elearning-chat/internal/entity"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
)

type UserRepoContract interface {
	FindUserByID(ctx context.Context, userID string) (*entity.User, *app_error.AppError)
}
