package model

import (
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID        uint64  `gorm:"primaryKey"`
	Email     string  `gorm:"type:varchar(191);not null;uniqueIndex:idx_email"`
	Name      *string `gorm:"type:varchar(100)"`
	Image     *string `gorm:"type:varchar(512)"`
	Password  *string `gorm:"type:varchar(255)"`
	Role      string  `gorm:"type:varchar(20);not null;default:'user'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
