package service

import (
	"HalalCalendar/internal/api/dto"
	"HalalCalendar/internal/model"
	"HalalCalendar/internal/repository"
	"context"
	"errors"
	log "log/slog"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type PostActionService interface {
	ToggleLike(ctx context.Context, caller *Caller, postID uint64) (*dto.LikeToggleDTO, error)
	LikeStatus(ctx context.Context, caller *Caller, postID uint64) (*dto.LikeStatusDTO, error)
}

type postActionServiceImpl struct {
	postRepo   repository.PostRepo
	actionRepo repository.PostActionRepo
}

func NewPostActionService(postRepo repository.PostRepo, actionRepo repository.PostActionRepo) PostActionService {
	return &postActionServiceImpl{
		postRepo:   postRepo,
		actionRepo: actionRepo,
	}
}

// ToggleLike 已点赞则取消，否则点赞；并发重复请求依靠 (user_id, post_id) 主键收敛
func (s *postActionServiceImpl) ToggleLike(ctx context.Context, caller *Caller, postID uint64) (*dto.LikeToggleDTO, error) {
	if !IsAuthenticated(caller) {
		return nil, ErrUnauthorized
	}
	if err := s.checkPost(ctx, postID); err != nil {
		return nil, err
	}

	exists, err := s.actionRepo.CheckLikeExists(ctx, caller.UserID, postID)
	if err != nil {
		return nil, storeError(ctx, "ToggleLike", err)
	}

	liked := !exists
	if exists {
		// 并发取消时可能已被删除，结果同样是未点赞
		if _, err = s.actionRepo.DeleteLike(ctx, caller.UserID, postID); err != nil {
			return nil, storeError(ctx, "ToggleLike", err)
		}
	} else {
		err = s.actionRepo.CreateLike(ctx, &model.Like{UserID: caller.UserID, PostID: postID})
		if err != nil && !isDuplicateError(err) {
			return nil, storeError(ctx, "ToggleLike", err)
		}
		if err != nil {
			log.DebugContext(ctx, "concurrent like converged", "post_id", postID, "user_id", caller.UserID)
		}
	}

	count, err := s.actionRepo.GetLikeCountByPostID(ctx, postID)
	if err != nil {
		return nil, storeError(ctx, "ToggleLike", err)
	}
	return &dto.LikeToggleDTO{Liked: liked, NewCount: count}, nil
}

func (s *postActionServiceImpl) LikeStatus(ctx context.Context, caller *Caller, postID uint64) (*dto.LikeStatusDTO, error) {
	if !IsAuthenticated(caller) {
		return nil, ErrUnauthorized
	}
	liked, err := s.actionRepo.CheckLikeExists(ctx, caller.UserID, postID)
	if err != nil {
		return nil, storeError(ctx, "LikeStatus", err)
	}
	return &dto.LikeStatusDTO{Liked: liked}, nil
}

func (s *postActionServiceImpl) checkPost(ctx context.Context, postID uint64) error {
	exists, err := s.postRepo.PublishedPostExists(ctx, postID)
	if err != nil {
		return storeError(ctx, "CheckPost", err)
	}
	if !exists {
		return ErrPostNotFound
	}
	return nil
}

func isDuplicateError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}
