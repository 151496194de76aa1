package model

import (
	"time"
)

type Like struct {
	UserID    uint64    `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	PostID    uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_likes_post_id" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Like) TableName() string {
	return "likes"
}
