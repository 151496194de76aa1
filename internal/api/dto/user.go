package dto

import "time"

// RegisterDTO 注册请求
type RegisterDTO struct {
	Email    string  `json:"email" binding:"required" validate:"email,max=191"`
	Password string  `json:"password" binding:"required" validate:"min=6,max=72"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=50"`
}

// CredentialDTO 登录请求
type CredentialDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenDTO 登录令牌
type TokenDTO struct {
	Token string `json:"token"`
}

// UserDTO 用户
type UserDTO struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Image     *string   `json:"image"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
