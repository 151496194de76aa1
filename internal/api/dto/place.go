package dto

// PlaceQuery 地点搜索参数
type PlaceQuery struct {
	Q string `form:"q" validate:"max=200"`
}

// PlaceDTO 地点候选
type PlaceDTO struct {
	DisplayName string `json:"displayName"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// PlaceSuggestionsDTO 地点候选列表
type PlaceSuggestionsDTO struct {
	Query      string      `json:"query"`
	Places     []*PlaceDTO `json:"places"`
	Superseded bool        `json:"superseded"`
}
