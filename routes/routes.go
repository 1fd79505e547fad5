package routes

import (
	"time"

	"useraccount/config"
	"useraccount/handlers"
	"useraccount/middleware"
	"useraccount/views"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRouter(cfg *config.Config, profiles *handlers.ProfileHandler, log *zap.Logger) *gin.Engine {
	router := gin.New()
	// Rate limiting keys on the peer address, never on X-Forwarded-For.
	_ = router.SetTrustedProxies(nil)
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORS.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	router.SetHTMLTemplate(views.Templates())

	// Stored profile images
	router.Static(cfg.Uploads.URLPrefix, cfg.Uploads.Dir)

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	}

	router.GET("/", profiles.Index)
	router.POST("/save-profile", middleware.RateLimit(limiter), profiles.SaveProfile)

	return router
}
