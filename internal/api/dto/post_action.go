package dto

// LikeToggleDTO 点赞切换结果
type LikeToggleDTO struct {
	Liked    bool  `json:"liked"`
	NewCount int64 `json:"newCount"`
}

// LikeStatusDTO 当前用户点赞状态
type LikeStatusDTO struct {
	Liked bool `json:"liked"`
}
