package consts

const (
	MimePrefixImage = "image/"
)

const (
	// FieldClear 更新时显式清空 image/date/location
	FieldClear = "__clear__"
)

const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortEventSoon = "eventSoon"
	SortEventLate = "eventLate"
)

const (
	// CallerKey gin.Context 中的调用方
	CallerKey = "caller"
	// TokenKey gin.Context 中的原始 Token
	TokenKey = "token"
)
