package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/cache"
	"github.com/creditbazaar/marketplace-api/events"
	"github.com/creditbazaar/marketplace-api/logger"
	"github.com/creditbazaar/marketplace-api/models"
)

// DeleteProduct soft-deletes a product so existing order items keep a
// resolvable product id.
func DeleteProduct(db *gorm.DB, store cache.Store, bus *events.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		res := db.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			logger.Log.Error("failed to delete product", zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete product"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
			return
		}

		InvalidateProductCache(store)
		bus.Publish(events.TopicInventoryChanged, id)

		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"deleted": true}})
	}
}
