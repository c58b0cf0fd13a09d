package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/olegsm/talkie-server/internal/auth"
	"github.com/olegsm/talkie-server/internal/config"
	"github.com/olegsm/talkie-server/internal/core"
	"github.com/olegsm/talkie-server/internal/mediaengine"
	"github.com/olegsm/talkie-server/internal/store"
)

// NewServer builds the HTTP server: REST API plus the websocket endpoint.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, media mediaengine.Engine, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	api := NewAPIHandlers(authService, logger)
	users := NewUserHandlers(st, logger)
	chats := NewChatHandlers(st, hub, media, logger)

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	userGroup := router.Group("/api/user")
	{
		userGroup.POST("/new", api.Register)
		userGroup.POST("/login", api.Login)

		authed := userGroup.Group("", AuthMiddleware(authService, logger))
		authed.GET("/logout", api.Logout)
		authed.GET("/search", users.SearchUsers)
		authed.PUT("/:id/status", users.UpdateStatus)
	}

	chatGroup := router.Group("/api/chat", AuthMiddleware(authService, logger))
	{
		chatGroup.POST("", chats.CreateChat)
		chatGroup.POST("/message", chats.SendAttachments)
		chatGroup.GET("/message/:id", chats.GetMessages)
		chatGroup.GET("/:id", chats.GetChat)
	}

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, cfg.MessageRateLimit, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
