package middleware

import (
	"HalalCalendar/internal/pkg/consts"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入调用者，失败或缺失则视为匿名
func AuthOptionalMiddleware(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller, token := auth.resolve(c); caller != nil {
			c.Set(consts.CallerKey, caller)
			c.Set(consts.TokenKey, token)
		}
		c.Next()
	}
}
