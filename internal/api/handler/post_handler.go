package handler

import (
	"HalalCalendar/internal/api/dto"
	"HalalCalendar/internal/api/middleware"
	"HalalCalendar/internal/pkg/response"
	"HalalCalendar/internal/pkg/util"
	"HalalCalendar/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{
		postSvc: postSvc,
	}
}

func (s *PostHandler) ListPosts(c *gin.Context) {
	var query dto.ListPostsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&query); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	posts, err := s.postSvc.ListPosts(c.Request.Context(), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *PostHandler) GetPost(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	post, err := s.postSvc.GetPost(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// GetPostForEdit 编辑页读取，包含未发布帖子
func (s *PostHandler) GetPostForEdit(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	post, err := s.postSvc.GetPostForEdit(c.Request.Context(), middleware.CallerFrom(c), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) CreatePost(c *gin.Context) {
	form, closeFn, err := bindPostForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFn()

	post, err := s.postSvc.CreatePost(c.Request.Context(), middleware.CallerFrom(c), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessCreated(c, post)
}

func (s *PostHandler) UpdatePost(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	form, closeFn, err := bindPostForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFn()

	post, err := s.postSvc.UpdatePost(c.Request.Context(), middleware.CallerFrom(c), postID, form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.postSvc.DeletePost(c.Request.Context(), middleware.CallerFrom(c), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.DeleteResultDTO{Success: true})
}

// bindPostForm 读取 multipart/urlencoded 表单；未携带的可选字段保持 nil
func bindPostForm(c *gin.Context) (*dto.PostFormDTO, func(), error) {
	noop := func() {}
	if _, err := c.MultipartForm(); err != nil && c.ContentType() == "multipart/form-data" {
		return nil, noop, service.ErrParamInvalid
	}

	published, _ := strconv.ParseBool(c.PostForm("published"))
	form := &dto.PostFormDTO{
		Title:     c.PostForm("title"),
		Content:   c.PostForm("content"),
		Published: published,
		Image:     optionalForm(c, "image"),
		Date:      optionalForm(c, "date"),
		Location:  optionalForm(c, "location"),
		Tags:      optionalForm(c, "tags"),
	}

	upload, file, err := openUpload(c, "image")
	if err != nil {
		return nil, noop, service.ErrParamInvalid
	}
	if upload == nil {
		return form, noop, nil
	}
	form.ImageFile = upload
	return form, func() { _ = file.Close() }, nil
}
