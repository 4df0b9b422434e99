package mapper

import (
	"legal-chatbot-be/internal/entity"
	"legal-chatbot-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:                u.Id,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Role:              entity.UserRole(u.Role),
		ProfilePictureURL: u.ProfilePictureURL,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:                u.Id,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Role:              string(u.Role),
		ProfilePictureURL: u.ProfilePictureURL,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
