// Package httpapi exposes the account and subscription authoring endpoints.
// The matching engine itself has no inbound surface; everything here feeds
// the tables the engine reads.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/insiderwatch/insiderwatch/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	users  *usecase.UserUsecase
	subs   *usecase.SubscriptionUsecase
	logger *zap.Logger
}

func NewServer(users *usecase.UserUsecase, subs *usecase.SubscriptionUsecase, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	s := &Server{
		router: router,
		users:  users,
		subs:   subs,
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	s.router.GET("/health", s.health)

	api := s.router.Group("/api")
	{
		api.POST("/users", s.registerUser)
		api.POST("/users/:user_id/deactivate", s.deactivateUser)

		api.GET("/users/:user_id/subscriptions", s.listSubscriptions)
		api.POST("/users/:user_id/subscriptions", s.createSubscription)
		api.POST("/users/:user_id/subscriptions/:sub_id/enable", s.enableSubscription)
		api.POST("/users/:user_id/subscriptions/:sub_id/disable", s.disableSubscription)
		api.DELETE("/users/:user_id/subscriptions/:sub_id", s.deleteSubscription)

		// One-click opt-out link embedded in the digest emails.
		api.GET("/emails/cancel", s.cancelEmail)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
