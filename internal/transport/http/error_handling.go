package httpt

import (
	"context"
	"errors"
	"net/http"

	"github.com/Karlitosantana/reima-resale/internal/entity"
	"github.com/Karlitosantana/reima-resale/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h *ItemHandler) handleServiceError(c *gin.Context, err error, op string) {
	log := h.log.Ctx(c.Request.Context())

	log.LogAttrs(c.Request.Context(), logger.ErrorLevel, op+" failed",
		logger.Any("error", err),
		logger.String("remote_addr", c.ClientIP()),
		logger.String("user_agent", c.Request.UserAgent()),
	)

	switch {
	case errors.Is(err, entity.ErrInvalidData):
		c.JSON(
			http.StatusBadRequest,
			ErrorResponse{Error: "Invalid item data. Check name and purchase price."},
		)
	case errors.Is(err, entity.ErrDataNotFound):
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "item not found",
			logger.String("item_id", c.Param("item_id")),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Item not found"})
	case errors.Is(err, entity.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
	case errors.Is(err, entity.ErrNotAuthorized):
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "destructive operation denied",
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Not authorized for this operation"})
	case errors.Is(err, entity.ErrConflictingData):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Conflicting item data"})
	case errors.Is(err, entity.ErrStorageCapacity):
		c.JSON(http.StatusInsufficientStorage, ErrorResponse{Error: "Local cache is full"})
	case errors.Is(err, context.DeadlineExceeded):
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "request timeout",
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "Request timed out"})
	default:
		log.LogAttrs(c.Request.Context(), logger.ErrorLevel, "internal server error",
			logger.Any("error", err),
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal service error"})
	}
}

func (h *ItemHandler) handleInvalidItemID(c *gin.Context, op, value string) {
	log := h.log.Ctx(c.Request.Context())

	log.LogAttrs(c.Request.Context(), logger.WarnLevel, "invalid item id",
		logger.String("op", op),
		logger.String("value", value),
		logger.String("remote_addr", c.ClientIP()),
	)

	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid item id"})
}
