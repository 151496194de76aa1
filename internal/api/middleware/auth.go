package middleware

import (
	"HalalCalendar/internal/pkg/consts"
	"HalalCalendar/internal/pkg/response"
	"HalalCalendar/internal/pkg/security"
	"HalalCalendar/internal/service"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// Authenticator 解析 Token 并构造调用者身份，不做权限判断
type Authenticator struct {
	tokens  *security.TokenManager
	revoker service.TokenRevoker
}

func NewAuthenticator(tokens *security.TokenManager, revoker service.TokenRevoker) *Authenticator {
	return &Authenticator{tokens: tokens, revoker: revoker}
}

// resolve 返回有效 Token 对应的调用者，无效或已注销时返回 nil
func (s *Authenticator) resolve(c *gin.Context) (*service.Caller, string) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return nil, ""
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, ""
	}
	signature, err := security.ExtractSignature(token)
	if err != nil || service.IsRevokedToken(c.Request.Context(), s.revoker, signature) {
		return nil, ""
	}

	return &service.Caller{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, token
}

// AuthMiddleware 必须登录，否则返回 401
func AuthMiddleware(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, token := auth.resolve(c)
		if caller == nil {
			response.Fail(c, response.Unauthorized, "Token 缺失、无效或已过期")
			return
		}

		c.Set(consts.CallerKey, caller)
		c.Set(consts.TokenKey, token)
		c.Next()
	}
}

// CallerFrom 取出中间件注入的调用者，匿名时为 nil
func CallerFrom(c *gin.Context) *service.Caller {
	v, ok := c.Get(consts.CallerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*service.Caller)
	return caller
}
