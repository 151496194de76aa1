package service

import (
	"HalalCalendar/internal/api/config"
	"HalalCalendar/internal/api/dto"
	"HalalCalendar/internal/model"
	"HalalCalendar/internal/pkg/consts"
	"HalalCalendar/internal/pkg/util"
	"HalalCalendar/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jinzhu/copier"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// dateLayouts 可接受的活动日期格式
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

const httpsPrefix = "https://"

type PostService interface {
	ListPosts(ctx context.Context, query *dto.ListPostsQuery) (*dto.PostListDTO, error)
	GetPost(ctx context.Context, postID uint64) (*dto.PostDTO, error)
	GetPostForEdit(ctx context.Context, caller *Caller, postID uint64) (*dto.PostDTO, error)
	CreatePost(ctx context.Context, caller *Caller, form *dto.PostFormDTO) (*dto.PostDTO, error)
	UpdatePost(ctx context.Context, caller *Caller, postID uint64, form *dto.PostFormDTO) (*dto.PostDTO, error)
	DeletePost(ctx context.Context, caller *Caller, postID uint64) error
}

type postServiceImpl struct {
	postRepo   repository.PostRepo
	actionRepo repository.PostActionRepo
	mediaSvc   MediaService
	cfg        config.PostConfig
}

func NewPostService(postRepo repository.PostRepo, actionRepo repository.PostActionRepo, mediaSvc MediaService, cfg config.PostConfig) PostService {
	return &postServiceImpl{
		postRepo:   postRepo,
		actionRepo: actionRepo,
		mediaSvc:   mediaSvc,
		cfg:        cfg,
	}
}

// ListPosts 已发布帖子的搜索、排序与分页；计数与分页查询并发执行，不保证两者一致
func (s *postServiceImpl) ListPosts(ctx context.Context, query *dto.ListPostsQuery) (*dto.PostListDTO, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}
	if s.cfg.MaxPageSize > 0 && pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	search := strings.TrimSpace(query.Search)
	filter := repository.PostFilter{
		Search: search,
		Tags:   util.SplitTokens(search),
		Sort:   normalizeSort(query.Sort),
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}

	var (
		posts []*model.Post
		count int64
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.postRepo.CountPublished(gCtx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = s.postRepo.ListPublished(gCtx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError(ctx, "ListPosts", err)
	}

	items, err := s.toPostDTOs(ctx, posts)
	if err != nil {
		return nil, err
	}

	return &dto.PostListDTO{
		Posts:      items,
		TotalPages: (count + int64(pageSize) - 1) / int64(pageSize),
	}, nil
}

func normalizeSort(sort string) string {
	switch sort {
	case consts.SortOldest, consts.SortEventSoon, consts.SortEventLate:
		return sort
	default:
		return consts.SortNewest
	}
}

func (s *postServiceImpl) GetPost(ctx context.Context, postID uint64) (*dto.PostDTO, error) {
	post, err := s.postRepo.GetPublishedPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeError(ctx, "GetPost", err)
	}
	return s.toPostDTO(ctx, post)
}

// GetPostForEdit 管理员可读取未发布的帖子
func (s *postServiceImpl) GetPostForEdit(ctx context.Context, caller *Caller, postID uint64) (*dto.PostDTO, error) {
	if !IsAdmin(caller) {
		return nil, ErrUnauthorized
	}
	return s.loadPost(ctx, "GetPostForEdit", postID)
}

func (s *postServiceImpl) CreatePost(ctx context.Context, caller *Caller, form *dto.PostFormDTO) (*dto.PostDTO, error) {
	if !IsAdmin(caller) {
		return nil, ErrUnauthorized
	}
	title, content, err := validatePostForm(form)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID:  caller.UserID,
		Title:     title,
		Slug:      util.Slugify(title),
		Content:   content,
		Published: form.Published,
	}

	var tags []string
	if form.Tags != nil {
		if tags, err = parseTagsField(*form.Tags); err != nil {
			return nil, err
		}
	}

	uploaded, err := s.applyOptionalFields(ctx, post, form)
	if err != nil {
		return nil, err
	}

	if err = s.postRepo.CreatePost(ctx, post, tags); err != nil {
		if uploaded != "" {
			s.mediaSvc.DiscardImage(ctx, uploaded)
		}
		return nil, storeError(ctx, "CreatePost", err)
	}
	log.InfoContext(ctx, "post created", "post_id", post.ID, "author_id", caller.UserID)

	return s.loadPost(ctx, "CreatePost", post.ID)
}

// UpdatePost 标题、正文、发布状态整体替换；图片、日期、地点、标签仅在携带时修改
func (s *postServiceImpl) UpdatePost(ctx context.Context, caller *Caller, postID uint64, form *dto.PostFormDTO) (*dto.PostDTO, error) {
	if !IsAdmin(caller) {
		return nil, ErrUnauthorized
	}
	title, content, err := validatePostForm(form)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeError(ctx, "UpdatePost", err)
	}

	post.Title = title
	post.Slug = util.Slugify(title)
	post.Content = content
	post.Published = form.Published
	var tags []string
	if form.Tags != nil && strings.TrimSpace(*form.Tags) != "" {
		if tags, err = parseTagsField(*form.Tags); err != nil {
			return nil, err
		}
	}

	uploaded, err := s.applyOptionalFields(ctx, post, form)
	if err != nil {
		return nil, err
	}

	if err = s.postRepo.UpdatePost(ctx, post, tags); err != nil {
		if uploaded != "" {
			s.mediaSvc.DiscardImage(ctx, uploaded)
		}
		return nil, storeError(ctx, "UpdatePost", err)
	}
	log.InfoContext(ctx, "post updated", "post_id", post.ID, "editor_id", caller.UserID)

	return s.loadPost(ctx, "UpdatePost", post.ID)
}

func (s *postServiceImpl) DeletePost(ctx context.Context, caller *Caller, postID uint64) error {
	if !IsAdmin(caller) {
		return ErrUnauthorized
	}
	affected, err := s.postRepo.DeletePost(ctx, postID)
	if err != nil {
		return storeError(ctx, "DeletePost", err)
	}
	if affected == 0 {
		return ErrPostNotFound
	}
	log.InfoContext(ctx, "post deleted", "post_id", postID, "editor_id", caller.UserID)
	return nil
}

func validatePostForm(form *dto.PostFormDTO) (string, string, error) {
	if form == nil {
		return "", "", ErrValidation
	}
	if err := util.ValidateDTO(form); err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	title := strings.TrimSpace(form.Title)
	content := strings.TrimSpace(form.Content)
	if title == "" || content == "" {
		return "", "", fmt.Errorf("%w: title and content are required", ErrValidation)
	}
	return title, content, nil
}

// parseTagsField 解析标签，单个标签不得超过列宽
func parseTagsField(raw string) ([]string, error) {
	tags := util.ParseTags(raw)
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > model.TagNameMaxLen {
			return nil, fmt.Errorf("%w: tag exceeds %d characters", ErrValidation, model.TagNameMaxLen)
		}
	}
	return tags, nil
}

// applyOptionalFields 处理图片、日期、地点：空值表示不修改，consts.FieldClear 表示清空
// 返回本次新上传图片的 URL，写库失败时由调用方清理
func (s *postServiceImpl) applyOptionalFields(ctx context.Context, post *model.Post, form *dto.PostFormDTO) (string, error) {
	if v, ok := presentValue(form.Date); ok {
		if v == consts.FieldClear {
			post.Date = nil
		} else {
			date, err := parseEventDate(v)
			if err != nil {
				return "", err
			}
			post.Date = &date
		}
	}

	if v, ok := presentValue(form.Location); ok {
		if v == consts.FieldClear {
			post.Location = nil
		} else {
			post.Location = &v
		}
	}

	if form.ImageFile != nil {
		url, err := s.mediaSvc.StoreImage(ctx, form.ImageFile)
		if err != nil {
			return "", err
		}
		post.Image = &url
		return url, nil
	}
	if v, ok := presentValue(form.Image); ok {
		switch {
		case v == consts.FieldClear:
			post.Image = nil
		case strings.HasPrefix(v, httpsPrefix):
			post.Image = &v
		}
	}
	return "", nil
}

func presentValue(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*v)
	return trimmed, trimmed != ""
}

func parseEventDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, v)
}

func (s *postServiceImpl) loadPost(ctx context.Context, op string, postID uint64) (*dto.PostDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeError(ctx, op, err)
	}
	return s.toPostDTO(ctx, post)
}

func (s *postServiceImpl) toPostDTO(ctx context.Context, post *model.Post) (*dto.PostDTO, error) {
	items, err := s.toPostDTOs(ctx, []*model.Post{post})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// toPostDTOs 组装作者、标签与点赞/评论计数
func (s *postServiceImpl) toPostDTOs(ctx context.Context, posts []*model.Post) ([]*dto.PostDTO, error) {
	items := make([]*dto.PostDTO, 0, len(posts))
	if len(posts) == 0 {
		return items, nil
	}

	ids := make([]uint64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	var likes, comments map[uint64]int64
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likes, err = s.actionRepo.GetLikeCountsByPostIDs(gCtx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.actionRepo.GetCommentCountsByPostIDs(gCtx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError(ctx, "CountPostActions", err)
	}

	for _, p := range posts {
		item := &dto.PostDTO{}
		_ = copier.Copy(item, p)
		item.Tags = p.TagNames()
		item.Author = dto.AuthorDTO{Name: p.Author.Name, Image: p.Author.Image}
		item.Count = dto.PostCountDTO{Likes: likes[p.ID], Comments: comments[p.ID]}
		items = append(items, item)
	}
	return items, nil
}

// storeError 记录存储层错误并转换为 ErrStoreUnavailable
func storeError(ctx context.Context, op string, err error) error {
	log.ErrorContext(ctx, "post store failure", "op", op, "err", err)
	return fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
}
