package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id                uuid.UUID `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// UpdateProfileRequest leaves the password unchanged when NewPassword is empty.
type UpdateProfileRequest struct {
	FirstName         string `json:"first_name" validate:"required,max=100"`
	LastName          string `json:"last_name" validate:"required,max=100"`
	NewPassword       string `json:"new_password"`
	ConfirmPassword   string `json:"confirm_password" validate:"eqfield=NewPassword"`
	ProfilePictureURL string `json:"profile_picture_url" validate:"omitempty,url"`
}
