package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/mnln/accounts/internal/logging"
	"github.com/mnln/accounts/internal/server/metrics"
)

type RouterConfig struct {
	FrontendOrigin string
	Verifier       TokenVerifier
	Metrics        *metrics.Metrics
	Logger         logging.Logger
}

// NewRouter wires the handler's routes onto a gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Observe(cfg.Logger, cfg.Metrics), CORS(cfg.FrontendOrigin))

	r.GET("/health-check", HealthCheck)
	r.GET("/supported-img-formats", SupportedImageFormats)
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	api := r.Group("/api")
	{
		user := api.Group("/user")
		user.POST("/register", h.Register)
		user.POST("/login", h.Login)
		user.POST("/salt", h.Salt)
		user.GET("/:user_id/avatar", h.GetAvatar)

		protected := user.Group("")
		protected.Use(BearerAuth(cfg.Verifier))
		protected.POST("/avatar", h.UploadAvatar)
		protected.GET("/:user_id/avatar/history", h.AvatarHistory)

		api.GET("/bff/user-page-data/:user_id", h.UserPageData)
	}

	return r
}
