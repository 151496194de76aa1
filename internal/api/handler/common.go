package handler

import (
	"HalalCalendar/internal/api/dto"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parsePostID 解析路径中的帖子 ID
func parsePostID(c *gin.Context) (uint64, bool) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		return 0, false
	}
	return postID, true
}

// optionalForm 未携带的表单字段返回 nil
func optionalForm(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

// openUpload 打开表单文件；未上传时返回 nil
func openUpload(c *gin.Context, key string) (*dto.UploadFile, multipart.File, error) {
	header, err := c.FormFile(key)
	if err != nil {
		return nil, nil, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &dto.UploadFile{Name: header.Filename, Size: header.Size, Reader: file}, file, nil
}
