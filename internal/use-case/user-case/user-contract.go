package user_service

import (
	"context"

	"github.com/xenn00/elearning-chat/internal/dtos/user_dto"
	"github.com/xenn00/elearning-chat/internal/entity"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
)

type UserServiceContract interface {
	ResolveUser(ctx context.Context, userID string) (*entity.User, *app_error.AppError)
	SerializeUserMinimal(ctx context.Context, userID string) (*user_dto.UserMinimalResponse, *app_error.AppError)
}
