package user_dto

import "github.com/xenn00/elearning-chat/internal/entity"

// UserMinimalResponse is the camelCase user descriptor embedded in chat
// messages and typing events.
type UserMinimalResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Avatar    *string `json:"avatar"`
	Bio       *string `json:"bio"`
	Title     *string `json:"title"`
}

func NewUserMinimalResponse(user *entity.User) *UserMinimalResponse {
	if user == nil {
		return nil
	}

	resp := &UserMinimalResponse{
		ID:    user.ID,
		Email: user.Email,
	}
	if p := user.Profile; p != nil {
		resp.FirstName = p.FirstName
		resp.LastName = p.LastName
		resp.Avatar = p.Avatar
		resp.Bio = p.Bio
		resp.Title = p.Title
	}

	return resp
}
