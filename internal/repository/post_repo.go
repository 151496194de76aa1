package repository

import (
	"HalalCalendar/internal/model"
	"HalalCalendar/internal/pkg/consts"
	"HalalCalendar/internal/pkg/util"
	"context"
	"strings"

	"gorm.io/gorm"
)

// PostFilter 列表查询条件
type PostFilter struct {
	// Search 标题模糊匹配（不区分大小写，通配符按字面处理）
	Search string
	// Tags 与任一标签完全相等即命中
	Tags   []string
	Sort   string
	Offset int
	Limit  int
}

type PostRepo interface {
	ListPublished(ctx context.Context, filter PostFilter) ([]*model.Post, error)
	CountPublished(ctx context.Context, filter PostFilter) (int64, error)
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	GetPublishedPost(ctx context.Context, id uint64) (*model.Post, error)
	PublishedPostExists(ctx context.Context, id uint64) (bool, error)
	CreatePost(ctx context.Context, post *model.Post, tags []string) error
	UpdatePost(ctx context.Context, post *model.Post, tags []string) error
	DeletePost(ctx context.Context, id uint64) (int64, error)
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

// publishedScope 已发布 + 搜索条件，列表与计数共用同一谓词
func (s PostRepoImpl) publishedScope(filter PostFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("posts.published = ?", true)

		search := strings.TrimSpace(filter.Search)
		if search == "" {
			return db
		}

		pattern := "%" + util.EscapeLike(strings.ToLower(search)) + "%"
		cond := s.db.Where("LOWER(posts.title) LIKE ? ESCAPE '"+util.LikeEscapeChar+"'", pattern)
		if len(filter.Tags) > 0 {
			tagged := s.db.Model(&model.PostTag{}).Select("post_id").Where(tagMatchClause(s.db.Dialector.Name()), filter.Tags)
			cond = cond.Or("posts.id IN (?)", tagged)
		}
		return db.Where(cond)
	}
}

// tagMatchClause 标签按字节精确匹配；MySQL 默认排序规则忽略大小写与重音
func tagMatchClause(dialect string) string {
	if dialect == "mysql" {
		return "name COLLATE " + model.TagNameCollation + " IN ?"
	}
	return "name IN ?"
}

func orderClause(sort string) string {
	switch sort {
	case consts.SortOldest:
		return "posts.created_at ASC, posts.id ASC"
	case consts.SortEventSoon:
		return "posts.date IS NULL, posts.date ASC, posts.id ASC"
	case consts.SortEventLate:
		return "posts.date IS NULL, posts.date DESC, posts.id DESC"
	default:
		return "posts.created_at DESC, posts.id DESC"
	}
}

func preloadTags(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (s PostRepoImpl) ListPublished(ctx context.Context, filter PostFilter) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Scopes(s.publishedScope(filter)).
		Preload("Author").
		Preload("Tags", preloadTags).
		Order(orderClause(filter.Sort)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s PostRepoImpl) CountPublished(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Post{}).
		Scopes(s.publishedScope(filter)).
		Count(&count).Error
	return count, err
}

// GetPost 不区分发布状态
func (s PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Tags", preloadTags).First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s PostRepoImpl) GetPublishedPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags", preloadTags).
		Where("published = ?", true).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s PostRepoImpl) PublishedPostExists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND published = ?", id, true).
		Count(&count).Error
	return count > 0, err
}

func (s PostRepoImpl) CreatePost(ctx context.Context, post *model.Post, tags []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags").Create(post).Error; err != nil {
			return err
		}
		return replaceTags(tx, post, tags)
	})
}

// UpdatePost 整体覆盖可编辑字段；tags 为 nil 时保持原有标签
func (s PostRepoImpl) UpdatePost(ctx context.Context, post *model.Post, tags []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(post).
			Select("title", "slug", "content", "image", "date", "location", "published", "updated_at").
			Updates(post).Error
		if err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		if err = tx.Where("post_id = ?", post.ID).Delete(&model.PostTag{}).Error; err != nil {
			return err
		}
		return replaceTags(tx, post, tags)
	})
}

func replaceTags(tx *gorm.DB, post *model.Post, tags []string) error {
	post.Tags = post.Tags[:0]
	if len(tags) == 0 {
		return nil
	}
	rows := model.NewPostTags(post.ID, tags)
	if err := tx.Create(rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		post.Tags = append(post.Tags, *row)
	}
	return nil
}

// DeletePost 同一事务内删除点赞、评论、标签和帖子，返回删除的帖子行数
func (s PostRepoImpl) DeletePost(ctx context.Context, id uint64) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostTag{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	return affected, err
}
