package http

import (
	"github.com/parley-chat/parley/internal/domain"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=36"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	ImageURL string `json:"imageUrl" binding:"omitempty,url"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type CreateRoomRequest struct {
	Name     string `json:"name" binding:"required,roomname"`
	Private  bool   `json:"private"`
	Password string `json:"password"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

type ConnectRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Username        string `json:"username" binding:"omitempty,max=36"`
	Email           string `json:"email" binding:"omitempty,email"`
	ImageURL        string `json:"imageUrl" binding:"omitempty,url"`
	Password        string `json:"password" binding:"omitempty,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"eqfield=Password"`
}

// RoomInfo is the public view of a catalog room; the password never
// leaves the server.
type RoomInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Private  bool   `json:"private"`
	Capacity int    `json:"capacity"`
}

type ProfileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func toRoomInfo(r domain.Room) RoomInfo {
	return RoomInfo{
		ID:       string(r.ID),
		Name:     string(r.Name),
		Private:  r.Private,
		Capacity: r.Capacity,
	}
}

func toProfile(u *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:       string(u.ID),
		Username: u.Username,
		Email:    u.Email,
		ImageURL: u.ImageURL,
	}
}
