package user_service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/internal/dtos/user_dto"
	"github.com/xenn00/elearning-chat/internal/entity"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
	user_repo "github.com/xenn00/elearning-chat/internal/repo/user"
	"github.com/xenn00/elearning-chat/internal/utils"
	"github.com/xenn00/elearning-chat/state"
	"golang.org/x/sync/singleflight"
)

const (
	minimalUserTTL = 5 * time.Minute
	lookupTimeout  = 5 * time.Second
)

type UserService struct {
	AppState *state.AppState
	UserRepo user_repo.UserRepoContract
	group    singleflight.Group
}

func NewUserService(appState *state.AppState) UserServiceContract {
	return &UserService{
		AppState: appState,
		UserRepo: user_repo.NewUserRepo(appState),
	}
}

func minimalUserKey(userID string) string {
	return fmt.Sprintf("user:minimal:%s", userID)
}

// ResolveUser returns the active user with the given id. Unknown and inactive
// users are both reported as 404.
func (u *UserService) ResolveUser(ctx context.Context, userID string) (*entity.User, *app_error.AppError) {
	user, err := u.UserRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, app_error.NewAppError(http.StatusNotFound, "user is not active", "user-id")
	}
	return user, nil
}

// SerializeUserMinimal is read on every typing frame, so it is cached in
// redis and concurrent misses for the same user share one lookup.
func (u *UserService) SerializeUserMinimal(ctx context.Context, userID string) (*user_dto.UserMinimalResponse, *app_error.AppError) {
	key := minimalUserKey(userID)

	if u.AppState.Redis != nil {
		cached, err := utils.GetCacheData[user_dto.UserMinimalResponse](ctx, u.AppState.Redis, key)
		if err != nil {
			log.Warn().Str("user_id", userID).Msg(err.Message)
		} else if cached != nil {
			return cached, nil
		}
	}

	v, err, _ := u.group.Do(key, func() (any, error) {
		// shared by every waiter, so the first caller going away must not cancel it
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		user, appErr := u.ResolveUser(ctx, userID)
		if appErr != nil {
			return nil, appErr
		}

		resp := user_dto.NewUserMinimalResponse(user)
		if u.AppState.Redis != nil {
			if err := utils.SetCacheData(ctx, u.AppState.Redis, key, resp, minimalUserTTL); err != nil {
				log.Warn().Err(err).Str("user_id", userID).Msg("failed to cache minimal user")
			}
		}
		return resp, nil
	})
	if err != nil {
		if appErr, ok := err.(*app_error.AppError); ok {
			return nil, appErr
		}
		return nil, app_error.NewAppError(http.StatusInternalServerError, err.Error(), "user")
	}

	return v.(*user_dto.UserMinimalResponse), nil
}
