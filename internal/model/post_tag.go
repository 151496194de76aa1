package model

const (
	// TagNameMaxLen 与 name 列宽度一致，按字符计
	TagNameMaxLen = 64
	// TagNameCollation MySQL 下 name 列使用的二进制排序规则
	TagNameCollation = "utf8mb4_bin"
)

// PostTag 帖子标签，Position 保留插入顺序
type PostTag struct {
	PostID   uint64 `gorm:"primaryKey;autoIncrement:false" json:"postId"`
	Position int    `gorm:"primaryKey;autoIncrement:false" json:"position"`
	Name     string `gorm:"type:varchar(64);not null;index:idx_tag_name" json:"name"`
}

func (PostTag) TableName() string {
	return "post_tags"
}

// NewPostTags 将标签列表转换为有序的 PostTag
func NewPostTags(postID uint64, names []string) []*PostTag {
	tags := make([]*PostTag, 0, len(names))
	for i, name := range names {
		tags = append(tags, &PostTag{PostID: postID, Position: i, Name: name})
	}
	return tags
}
