package model

import (
	"time"
)

type Post struct {
	ID        uint64     `gorm:"primaryKey" json:"id"`
	AuthorID  uint64     `gorm:"not null;index:idx_author_id" json:"authorId"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	Slug      string     `gorm:"type:varchar(255);not null;index:idx_slug" json:"slug"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Image     *string    `gorm:"type:varchar(512)" json:"image"`
	Date      *time.Time `gorm:"index:idx_date" json:"date"`
	Location  *string    `gorm:"type:varchar(255)" json:"location"`
	Published bool       `gorm:"not null;default:false;index:idx_published_created,priority:1" json:"published"`
	CreatedAt time.Time  `gorm:"index:idx_published_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	// 关联关系
	Author User      `gorm:"foreignKey:AuthorID;references:ID" json:"-"`
	Tags   []PostTag `gorm:"foreignKey:PostID;references:ID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}

// TagNames 按插入顺序返回标签
func (p *Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}
