package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	Id                uuid.UUID
	FirstName         string
	LastName          string
	Email             string
	PasswordHash      string
	Role              UserRole
	ProfilePictureURL *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
