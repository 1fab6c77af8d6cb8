package rest

import (
	"log/slog"
	"net/http"
	"time"

	"social-chat/auth"
	"social-chat/contract"
	"social-chat/observability"
	"social-chat/services"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Authority   *auth.TokenAuthority
	ChatService services.IChatService
	Registry    contract.IRegistry
	Monitoring  *observability.MonitoringManager
	// Websocket serves /ws once the caller is authenticated; the route is absent when nil.
	Websocket gin.HandlerFunc
	Log       *slog.Logger
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), AccessLog(deps.Log))

	router.GET("/health", Health(deps.Monitoring, deps.Registry))

	authenticated := auth.Middleware(deps.Authority)
	if deps.Websocket != nil {
		router.GET("/ws", authenticated, deps.Websocket)
	}

	chats := NewChatServer(deps.ChatService)
	api := router.Group("/api/v1", authenticated)
	{
		api.GET("/chats/all", chats.AllChats)
		api.GET("/chats/my-all-chats", chats.MyChats)
		api.GET("/chats/individual/:receiverId", chats.ChatsWith)
		api.GET("/chats/group-chat/:groupId", chats.GroupChats)
		api.GET("/chats/search", chats.SearchChats)
		api.GET("/chats/groups/all", chats.AllGroups)
		api.GET("/chats/my-groups", chats.MyGroups)
		api.GET("/chats/groups/:groupId", chats.Group)
		api.PUT("/users/me", chats.UpdateProfile)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "error": "route not found"})
	})
	return router
}

// Health reports the latest monitoring sample and the number of live connections.
func Health(monitoring *observability.MonitoringManager, registry contract.IRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := monitoring.GetLatest()
		stats.ConnectionsAlive = registry.Connections()
		c.JSON(http.StatusOK, gin.H{"status": "ok", "stats": stats})
	}
}

// AccessLog logs one line per request with slog.
func AccessLog(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
		}
		if userID, ok := auth.UserID(c); ok {
			attrs = append(attrs, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("Request failed", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn("Request rejected", attrs...)
		default:
			log.Debug("Request served", attrs...)
		}
	}
}
