package httpt

import (
	"github.com/Karlitosantana/reima-resale/internal/auth"
	"github.com/Karlitosantana/reima-resale/internal/service"
	"github.com/Karlitosantana/reima-resale/pkg/logger"
	"github.com/Karlitosantana/reima-resale/pkg/metric"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	svc     *service.ItemService
	log     logger.Logger
	metrics metric.HTTP
	router  *gin.Engine
}

func NewItemHandler(
	svc *service.ItemService,
	log logger.Logger,
	metrics metric.HTTP,
) *ItemHandler {
	h := &ItemHandler{
		svc:     svc,
		log:     log,
		metrics: metrics,
	}

	router := gin.New()

	router.Use(h.requestIDMiddleware())
	router.Use(h.identityMiddleware())
	router.Use(h.loggingMiddleware())
	router.Use(gin.Recovery())

	h.router = router

	h.setupRoutes()

	return h
}

func (h *ItemHandler) Engine() *gin.Engine {
	return h.router
}

// identityMiddleware lifts the caller's identity headers into the request
// context so the auth provider can resolve the current user downstream.
func (h *ItemHandler) identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetHeader("X-User-Email")
		if email != "" {
			identity := auth.Identity{
				ID:    c.GetHeader("X-User-ID"),
				Email: email,
			}
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		}

		c.Next()
	}
}
