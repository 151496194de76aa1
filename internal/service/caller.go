package service

import (
	"HalalCalendar/internal/model"
	"strings"
)

// Caller 当前请求的调用者身份，匿名访问时为 nil
type Caller struct {
	UserID uint64
	Email  string
	Role   string
}

// IsAdmin 角色比较不区分大小写
func IsAdmin(caller *Caller) bool {
	if caller == nil || caller.UserID == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(caller.Role), model.RoleAdmin)
}

// IsAuthenticated 是否为已登录用户
func IsAuthenticated(caller *Caller) bool {
	return caller != nil && caller.UserID != 0
}
