package security

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims Token 中携带的身份信息
type UserClaims struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
