package httpt

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/entity"
	"github.com/Karlitosantana/reima-resale/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	_defaultContextTimeout = 5 * time.Second
	_maxImportSize         = 8 << 20
)

func (h *ItemHandler) listItemsHandler(c *gin.Context) {
	const op = "transport.listItemsHandler"

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	items, err := h.svc.ListItems(ctx)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) getItemHandler(c *gin.Context) {
	const op = "transport.getItemHandler"

	log := h.log.Ctx(c.Request.Context())

	itemID := c.Param("item_id")
	if itemID == "" {
		h.handleInvalidItemID(c, op, itemID)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	item, err := h.svc.GetItem(ctx, itemID)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	log.LogAttrs(ctx, logger.DebugLevel, "item retrieved",
		logger.String("item_id", itemID),
	)

	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) saveItemHandler(c *gin.Context) {
	const op = "transport.saveItemHandler"

	log := h.log.Ctx(c.Request.Context())

	var item entity.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "malformed item payload",
			logger.Any("error", err),
			logger.String("remote_addr", c.ClientIP()),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid item payload"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	if err := h.svc.SaveItem(ctx, &item); err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	log.LogAttrs(ctx, logger.InfoLevel, "item saved",
		logger.String("item_id", item.ID),
	)

	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) deleteItemHandler(c *gin.Context) {
	const op = "transport.deleteItemHandler"

	itemID := c.Param("item_id")
	if itemID == "" {
		h.handleInvalidItemID(c, op, itemID)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	if err := h.svc.DeleteItem(ctx, itemID); err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Item deleted"})
}

func (h *ItemHandler) itemTemplateHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.NewItem())
}

func (h *ItemHandler) summaryHandler(c *gin.Context) {
	const op = "transport.summaryHandler"

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	stats, err := h.svc.Summary(ctx)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ItemHandler) monthlyStatsHandler(c *gin.Context) {
	const op = "transport.monthlyStatsHandler"

	months := 0
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 120 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid months window"})
			return
		}
		months = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	buckets, err := h.svc.MonthlyStats(ctx, months)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, buckets)
}

func (h *ItemHandler) platformStatsHandler(c *gin.Context) {
	const op = "transport.platformStatsHandler"

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	breakdown, err := h.svc.PlatformStats(ctx)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

func (h *ItemHandler) exportHandler(c *gin.Context) {
	const op = "transport.exportHandler"

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	payload, err := h.svc.Export(ctx)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="resale-items.json"`)
	c.Data(http.StatusOK, "application/json", payload)
}

func (h *ItemHandler) importHandler(c *gin.Context) {
	const op = "transport.importHandler"

	log := h.log.Ctx(c.Request.Context())

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, _maxImportSize))
	if err != nil {
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "failed reading import payload",
			logger.Any("error", err),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unreadable import payload"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	items, err := h.svc.Import(ctx, payload)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	log.LogAttrs(ctx, logger.InfoLevel, "collection imported",
		logger.Int("count", len(items)),
	)

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Import complete",
		Data:    gin.H{"count": len(items)},
	})
}
