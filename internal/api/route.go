package api

import (
	"HalalCalendar/internal/api/middleware"
	"HalalCalendar/internal/pkg/logger"
	"HalalCalendar/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 注册路由；权限判断在服务层完成，中间件只负责识别调用者
func SetupRouter(group *HandlersGroup, auth *middleware.Authenticator) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			response.Success(c, "pong")
		})

		userGroup := apiGroup.Group("/user")
		{
			// 无需登录即可访问的接口
			userGroup.POST("/login", group.UserHandler.Login)
			userGroup.POST("/register", group.UserHandler.Register)

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware(auth))
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
				authGroup.GET("/info", group.UserHandler.GetUserInfo)
			}
		}

		postGroup := apiGroup.Group("/posts")
		postGroup.Use(middleware.AuthOptionalMiddleware(auth))
		{
			postGroup.GET("", group.PostHandler.ListPosts)
			postGroup.GET("/:post_id", group.PostHandler.GetPost)
			postGroup.POST("", group.PostHandler.CreatePost)
			postGroup.PUT("/:post_id", group.PostHandler.UpdatePost)
			postGroup.DELETE("/:post_id", group.PostHandler.DeletePost)

			postGroup.POST("/:post_id/like", group.PostActionHandler.ToggleLike)
			postGroup.GET("/:post_id/like-status", group.PostActionHandler.LikeStatus)
		}

		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(middleware.AuthOptionalMiddleware(auth))
		{
			adminGroup.GET("/posts/:post_id", group.PostHandler.GetPostForEdit)
		}

		mediaGroup := apiGroup.Group("/media")
		mediaGroup.Use(middleware.AuthOptionalMiddleware(auth))
		{
			mediaGroup.POST("/upload", group.MediaHandler.Upload)
		}

		placeGroup := apiGroup.Group("/places")
		placeGroup.Use(middleware.AuthOptionalMiddleware(auth))
		{
			placeGroup.GET("", group.PlaceHandler.Suggest)
		}
	}

	return r
}
