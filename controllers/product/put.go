package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/cache"
	"github.com/creditbazaar/marketplace-api/events"
	"github.com/creditbazaar/marketplace-api/logger"
	"github.com/creditbazaar/marketplace-api/models"
)

type UpdateProductInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	Status        *string          `json:"status"`
	CategoryID    *uint            `json:"category_id"`
	IsFeatured    *bool            `json:"is_featured"`
	Image         *string          `json:"image"`
}

// UpdateProduct partially updates a product. Nil fields stay untouched.
func UpdateProduct(db *gorm.DB, store cache.Store, bus *events.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var product models.Product
		if err := db.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch product"})
			return
		}

		var input UpdateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.Price != nil {
			if !input.Price.IsPositive() {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "price must be positive"})
				return
			}
			updates["price"] = *input.Price
		}
		if input.StockQuantity != nil {
			if *input.StockQuantity < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "stock_quantity must not be negative"})
				return
			}
			updates["stock_quantity"] = *input.StockQuantity
		}
		if input.Status != nil {
			switch models.ProductStatus(*input.Status) {
			case models.ProductStatusActive, models.ProductStatusInactive,
				models.ProductStatusOutOfStock, models.ProductStatusDiscontinued:
				updates["status"] = *input.Status
			default:
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid product status"})
				return
			}
		}
		if input.CategoryID != nil {
			var category models.Category
			if err := db.First(&category, *input.CategoryID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Category does not exist"})
				return
			}
			updates["category_id"] = *input.CategoryID
		}
		if input.IsFeatured != nil {
			updates["is_featured"] = *input.IsFeatured
		}
		if input.Image != nil {
			updates["image"] = *input.Image
		}

		if len(updates) > 0 {
			if err := db.Model(&product).Updates(updates).Error; err != nil {
				logger.Log.Error("failed to update product", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update product"})
				return
			}
			InvalidateProductCache(store)
			if input.StockQuantity != nil || input.Status != nil {
				bus.Publish(events.TopicInventoryChanged, product.ID)
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
	}
}
