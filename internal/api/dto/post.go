package dto

import (
	"io"
	"time"
)

// ListPostsQuery 帖子列表查询参数
type ListPostsQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1"`
	Search   string `form:"search" validate:"max=200"`
	Sort     string `form:"sort"`
}

// PostDTO 帖子
type PostDTO struct {
	ID        uint64     `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	Content   string     `json:"content"`
	Image     *string    `json:"image"`
	Date      *time.Time `json:"date"`
	Location  *string    `json:"location"`
	Tags      []string   `json:"tags" copier:"-"`
	Published bool       `json:"published"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	// User
	AuthorID uint64    `json:"authorId"`
	Author   AuthorDTO `json:"author" copier:"-"`

	Count PostCountDTO `json:"_count" copier:"-"`
}

// AuthorDTO 作者展示信息
type AuthorDTO struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

// PostCountDTO 点赞、评论计数
type PostCountDTO struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// PostListDTO 帖子分页结果
type PostListDTO struct {
	Posts      []*PostDTO `json:"posts"`
	TotalPages int64      `json:"totalPages"`
}

// PostFormDTO 帖子 - 新增或修改
// 指针字段为 nil 表示请求中未携带该字段
type PostFormDTO struct {
	Title     string      `validate:"max=255"`
	Content   string      `validate:"max=100000"`
	Published bool
	Image     *string
	ImageFile *UploadFile
	Date      *string
	Location  *string `validate:"omitempty,max=255"`
	Tags      *string
}

// UploadFile 表单上传的文件
type UploadFile struct {
	Name   string
	Size   int64
	Reader io.ReadSeeker
}

// DeleteResultDTO 删除结果
type DeleteResultDTO struct {
	Success bool `json:"success"`
}
