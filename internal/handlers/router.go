package handlers

import (
	"net/http"

	"github.com/ayase/tomodachi/internal/infrastructure/metrics"
	"github.com/ayase/tomodachi/internal/repositories"
	"github.com/ayase/tomodachi/internal/services/activity"
	"github.com/ayase/tomodachi/internal/services/message"
	"github.com/ayase/tomodachi/internal/services/relationship"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HealthChecker reports backing-store health for /healthz
type HealthChecker interface {
	HealthCheck() error
}

// RouterConfig collects the dependencies of the HTTP surface
type RouterConfig struct {
	JWTSecret           string
	RelationshipService relationship.ServiceInterface
	MessageService      message.ServiceInterface
	UserRepo            repositories.UserRepository
	Sessions            *activity.Manager
	Health              HealthChecker
	Exporter            *metrics.PrometheusExporter
}

// NewRouter assembles the gin engine with all routes mounted under /api/v1
func NewRouter(cfg *RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.Default())
	if cfg.Exporter != nil {
		r.Use(metrics.Middleware(cfg.Exporter))
	}

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health.HealthCheck(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	relationshipHandler := NewRelationshipHandler(cfg.RelationshipService, cfg.Sessions)
	activityHandler := NewActivityHandler(cfg.Sessions)
	messageHandler := NewMessageHandler(cfg.MessageService, cfg.Sessions)
	userHandler := NewUserHandler(cfg.UserRepo)

	api := r.Group("/api/v1")
	api.Use(Auth(cfg.JWTSecret))
	{
		api.GET("/users", userHandler.List)

		api.GET("/relationships/status/:userID", relationshipHandler.Status)
		api.POST("/relationships/requests", relationshipHandler.SendRequest)
		api.POST("/relationships/requests/:userID/accept", relationshipHandler.AcceptRequest)
		api.POST("/relationships/requests/:userID/decline", relationshipHandler.DeclineRequest)
		api.DELETE("/relationships/requests/:userID", relationshipHandler.CancelRequest)
		api.GET("/relationships/pending", relationshipHandler.ListPendingReceived)
		api.GET("/relationships/sent", relationshipHandler.ListPendingSent)

		api.GET("/friends", relationshipHandler.ListFriends)
		api.DELETE("/friends/:userID", relationshipHandler.Unfriend)

		api.GET("/activity/counts", activityHandler.Counts)
		api.GET("/activity/feed", activityHandler.Feed)
		api.POST("/activity/messages/open", activityHandler.OpenMessages)
		api.POST("/activity/notifications/dismiss", activityHandler.DismissNotifications)
		api.DELETE("/activity/session", activityHandler.EndSession)

		api.GET("/messages", messageHandler.Conversations)
		api.GET("/messages/:userID", messageHandler.Conversation)
		api.POST("/messages", messageHandler.Send)
	}

	return r
}
