package httpt

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *ItemHandler) setupRoutes() {
	h.router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	v1 := h.router.Group("/api/v1")
	{
		items := v1.Group("/items")
		{
			items.GET("", h.listItemsHandler)
			items.POST("", h.saveItemHandler)
			items.GET("/template", h.itemTemplateHandler)
			items.GET("/:item_id", h.getItemHandler)
			items.DELETE("/:item_id", h.deleteItemHandler)
		}

		stats := v1.Group("/stats")
		{
			stats.GET("", h.summaryHandler)
			stats.GET("/monthly", h.monthlyStatsHandler)
			stats.GET("/platforms", h.platformStatsHandler)
		}

		v1.GET("/export", h.exportHandler)
		v1.POST("/import", h.importHandler)
	}
}
