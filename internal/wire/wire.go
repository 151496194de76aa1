package wire

import (
	"HalalCalendar/internal/api"
	"HalalCalendar/internal/api/config"
	"HalalCalendar/internal/api/handler"
	"HalalCalendar/internal/api/middleware"
	"HalalCalendar/internal/pkg/minio"
	"HalalCalendar/internal/pkg/nominatim"
	"HalalCalendar/internal/pkg/redis"
	"HalalCalendar/internal/pkg/security"
	"HalalCalendar/internal/repository"
	"HalalCalendar/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

// Collaborators 外部依赖，测试时可替换
type Collaborators struct {
	MediaHost service.MediaHost
	Places    service.PlaceSearcher
	Revoker   service.TokenRevoker
}

// DefaultCollaborators MinIO、Nominatim 与 Redis 实现
func DefaultCollaborators(cfg *config.Config) Collaborators {
	return Collaborators{
		MediaHost: minio.NewHost(),
		Places:    nominatim.NewClient(cfg.Nominatim),
		Revoker:   redis.NewTokenBlacklist(),
	}
}

func NewTokenManager(cfg *config.Config) *security.TokenManager {
	return security.NewTokenManager(
		cfg.Security.JWTSecret,
		cfg.Security.JWTIssuer,
		time.Duration(cfg.Security.JWTExpireHours)*time.Hour,
	)
}

func BuildApplication(db *gorm.DB, cfg *config.Config, deps Collaborators) (*ApplicationContainer, error) {
	postRepo := repository.NewPostRepository(db)
	postActionRepo := repository.NewPostActionRepo(db)
	userRepo := repository.NewUserRepo(db)

	tokens := NewTokenManager(cfg)

	mediaService := service.NewMediaService(deps.MediaHost, cfg.Post.MaxImageWidth, cfg.Post.MaxUploadSize)
	postService := service.NewPostService(postRepo, postActionRepo, mediaService, cfg.Post)
	postActionService := service.NewPostActionService(postRepo, postActionRepo)
	userService := service.NewUserService(userRepo, tokens, deps.Revoker)
	debouncer := service.NewDebouncer(time.Duration(cfg.Nominatim.DebounceMillis) * time.Millisecond)
	placeService := service.NewPlaceService(deps.Places, debouncer, cfg.Nominatim.MinQueryLength)

	handlers := &api.HandlersGroup{
		UserHandler:       handler.NewUserHandler(userService),
		PostHandler:       handler.NewPostHandler(postService),
		PostActionHandler: handler.NewPostActionHandler(postActionService),
		MediaHandler:      handler.NewMediaHandler(mediaService),
		PlaceHandler:      handler.NewPlaceHandler(placeService),
	}

	router := api.SetupRouter(handlers, middleware.NewAuthenticator(tokens, deps.Revoker))

	return &ApplicationContainer{
		Router: router,
		DB:     db,
	}, nil
}
