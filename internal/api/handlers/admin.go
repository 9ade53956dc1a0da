package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/repository"
)

// HandleListOrders handles GET /admin/orders
func HandleListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Parse query parameters
		limitStr := c.DefaultQuery("limit", "50")
		offsetStr := c.DefaultQuery("offset", "0")

		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 100 {
			limit = 50
		}

		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			offset = 0
		}

		records, err := repos.Orders.List(c.Request.Context(), limit, offset)
		if err != nil {
			logger.Error("Failed to list orders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		// Build response
		orders := make([]gin.H, len(records))
		for i, record := range records {
			orders[i] = gin.H{
				"id":         record.ID.String(),
				"session_id": record.SessionID.String(),
				"remote_id":  record.RemoteID,
				"payment":    record.Payment,
				"address":    record.Address,
				"email":      record.Email,
				"phone":      record.Phone,
				"total":      record.Total,
				"items":      record.Items,
				"created_at": record.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": orders,
			"limit":  limit,
			"offset": offset,
		})
	}
}
