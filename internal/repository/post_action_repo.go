package repository

import (
	"HalalCalendar/internal/model"
	"context"

	"gorm.io/gorm"
)

type PostActionRepo interface {
	CreateLike(ctx context.Context, like *model.Like) error
	DeleteLike(ctx context.Context, userID, postID uint64) (int64, error)
	CheckLikeExists(ctx context.Context, userID, postID uint64) (bool, error)

	GetLikeCountByPostID(ctx context.Context, postID uint64) (int64, error)
	GetLikeCountsByPostIDs(ctx context.Context, postIDs []uint64) (map[uint64]int64, error)
	GetCommentCountsByPostIDs(ctx context.Context, postIDs []uint64) (map[uint64]int64, error)
}

type PostActionRepoImpl struct {
	db *gorm.DB
}

func NewPostActionRepo(db *gorm.DB) PostActionRepo {
	return &PostActionRepoImpl{db}
}

func (s *PostActionRepoImpl) CreateLike(ctx context.Context, like *model.Like) error {
	return s.db.WithContext(ctx).Create(like).Error
}

// DeleteLike 返回实际删除的行数
func (s *PostActionRepoImpl) DeleteLike(ctx context.Context, userID, postID uint64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Like{})
	return result.RowsAffected, result.Error
}

func (s *PostActionRepoImpl) CheckLikeExists(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (s *PostActionRepoImpl) GetLikeCountByPostID(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

type postCount struct {
	PostID uint64
	Total  int64
}

// GetLikeCountsByPostIDs 批量统计点赞数，未出现的帖子计数为 0
func (s *PostActionRepoImpl) GetLikeCountsByPostIDs(ctx context.Context, postIDs []uint64) (map[uint64]int64, error) {
	return s.countGrouped(ctx, &model.Like{}, postIDs)
}

// GetCommentCountsByPostIDs 批量统计评论数
func (s *PostActionRepoImpl) GetCommentCountsByPostIDs(ctx context.Context, postIDs []uint64) (map[uint64]int64, error) {
	return s.countGrouped(ctx, &model.PostComment{}, postIDs)
}

func (s *PostActionRepoImpl) countGrouped(ctx context.Context, m any, postIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []postCount
	err := s.db.WithContext(ctx).Model(m).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}
