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

type CreateProductInput struct {
	SKU           string          `json:"sku" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	StockQuantity int             `json:"stock_quantity"`
	CategoryID    *uint           `json:"category_id"`
	IsFeatured    bool            `json:"is_featured"`
	Image         string          `json:"image"`
}

// CreateProduct creates a new product.
func CreateProduct(db *gorm.DB, store cache.Store, bus *events.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if !input.Price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "price must be positive"})
			return
		}
		if input.StockQuantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "stock_quantity must not be negative"})
			return
		}

		if input.CategoryID != nil {
			var category models.Category
			if err := db.First(&category, *input.CategoryID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Category does not exist"})
				return
			}
		}

		product := models.Product{
			SKU:           input.SKU,
			Name:          input.Name,
			Description:   input.Description,
			Price:         input.Price,
			StockQuantity: input.StockQuantity,
			Status:        models.ProductStatusActive,
			CategoryID:    input.CategoryID,
			IsFeatured:    input.IsFeatured,
			Image:         input.Image,
		}
		if err := db.Create(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "SKU already exists"})
				return
			}
			logger.Log.Error("failed to create product", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create product"})
			return
		}

		InvalidateProductCache(store)
		bus.Publish(events.TopicInventoryChanged, product.ID)

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": product})
	}
}
