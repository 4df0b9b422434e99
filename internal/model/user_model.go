package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FirstName         string    `gorm:"type:varchar(100);not null"`
	LastName          string    `gorm:"type:varchar(100);not null;default:''"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash      string    `gorm:"type:varchar(255);not null"`
	Role              string    `gorm:"type:varchar(50);not null;default:'user'"`
	ProfilePictureURL *string   `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
