package model

import (
	"time"
)

// PostComment 评论，目前仅统计数量
type PostComment struct {
	ID        uint64    `gorm:"primaryKey"`
	PostID    uint64    `gorm:"not null;index:idx_comments_post_id" json:"postId"`
	UserID    uint64    `gorm:"not null" json:"userId"`
	Content   string    `gorm:"type:varchar(1000);not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (PostComment) TableName() string {
	return "post_comments"
}
