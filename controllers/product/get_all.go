package productcontroller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/cache"
	"github.com/creditbazaar/marketplace-api/logger"
	"github.com/creditbazaar/marketplace-api/models"
)

const productCachePrefix = "catalog:products:"

// GetProducts lists active products, optionally filtered by category or
// featured flag. List reads go through the TTL cache; every product mutation
// and inventory event flushes the prefix.
func GetProducts(db *gorm.DB, store cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Query("category_id")
		featured := c.Query("featured")
		key := productCachePrefix + category + ":" + featured

		if cached, err := store.Get(c.Request.Context(), key); err == nil {
			var products []models.Product
			if json.Unmarshal(cached, &products) == nil {
				c.JSON(http.StatusOK, gin.H{"success": true, "data": products, "cached": true})
				return
			}
		}

		q := db.Preload("Category").Where("status = ?", models.ProductStatusActive)
		if category != "" {
			q = q.Where("category_id = ?", category)
		}
		if featured == "true" {
			q = q.Where("is_featured = ?", true)
		}

		var products []models.Product
		if err := q.Order("created_at DESC").Find(&products).Error; err != nil {
			logger.Log.Error("failed to fetch products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch products"})
			return
		}

		if data, err := json.Marshal(products); err == nil {
			if err := store.Set(c.Request.Context(), key, data, ttl); err != nil {
				logger.Log.Warn("product cache set failed", zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
	}
}

// InvalidateProductCache drops cached catalog listings. Called from mutating
// handlers and wired to inventory.changed bus events at startup. The store
// has no key scan, so the whole cache domain is flushed; everything in it is
// a short-TTL catalog read.
func InvalidateProductCache(store cache.Store) {
	if err := store.Flush(context.Background()); err != nil {
		logger.Log.Warn("product cache flush failed", zap.Error(err))
	}
}
