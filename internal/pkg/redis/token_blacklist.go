package redis

import (
	"HalalCalendar/internal/pkg/consts"
	"context"
	"time"
)

// TokenBlacklist 基于 Redis 的 Token 吊销列表
type TokenBlacklist struct{}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{}
}

// Revoke 吊销签名，ttl 与 Token 剩余有效期一致
func (s *TokenBlacklist) Revoke(ctx context.Context, signature string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return SetWithExpiration(ctx, consts.RevokedTokenKey+signature, "1", ttl)
}

// IsRevoked 判断签名是否已被吊销
func (s *TokenBlacklist) IsRevoked(ctx context.Context, signature string) (bool, error) {
	return Exists(ctx, consts.RevokedTokenKey+signature)
}
