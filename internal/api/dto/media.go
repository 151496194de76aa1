package dto

// MediaUploadDTO 图片上传结果
type MediaUploadDTO struct {
	URL string `json:"url"`
}
