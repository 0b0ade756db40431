package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/wangchienwei/pushchat/internal/config"
	"github.com/wangchienwei/pushchat/internal/notify"
)

// NewServer builds the relay HTTP server.
func NewServer(provider notify.Provider, limiter *RateLimiter, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(provider, limiter, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter assembles the relay routes and middleware.
func NewRouter(provider notify.Provider, limiter *RateLimiter, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware())

	handlers := NewNotificationHandlers(provider, limiter, logger)
	router.POST("/send-notification", handlers.SendNotification)
	// The preflight is answered by the CORS middleware before any logic runs;
	// the route only has to exist.
	router.OPTIONS("/send-notification", func(*gin.Context) {})

	router.GET("/health", healthHandler)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
