package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/cache"
	"github.com/creditbazaar/marketplace-api/logger"
	"github.com/creditbazaar/marketplace-api/models"
)

type CategoryInput struct {
	Name  string `json:"name" binding:"required"`
	Image string `json:"image"`
}

func CreateCategory(db *gorm.DB, store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		category := models.Category{Name: input.Name, Image: input.Image}
		if err := db.Create(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Category already exists"})
				return
			}
			logger.Log.Error("failed to create category", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create category"})
			return
		}

		InvalidateProductCache(store)
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": category})
	}
}

func UpdateCategory(db *gorm.DB, store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		res := db.Model(&models.Category{}).Where("id = ?", id).
			Updates(map[string]interface{}{"name": input.Name, "image": input.Image})
		if res.Error != nil {
			logger.Log.Error("failed to update category", zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update category"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Category not found"})
			return
		}

		InvalidateProductCache(store)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"updated": true}})
	}
}

// GetAllCategories lists categories without their products.
func GetAllCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Find(&categories).Error; err != nil {
			logger.Log.Error("failed to fetch categories", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
	}
}

// GetAllCategoriesWithProducts returns categories with their active products
// preloaded, for the storefront category pages.
func GetAllCategoriesWithProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Preload("Products", "status = ?", models.ProductStatusActive).
			Find(&categories).Error; err != nil {
			logger.Log.Error("failed to fetch categories with products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
	}
}

func DeleteCategory(db *gorm.DB, store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		err := db.Transaction(func(tx *gorm.DB) error {
			// Detach products first; they survive without a category.
			if err := tx.Model(&models.Product{}).Where("category_id = ?", id).
				Update("category_id", nil).Error; err != nil {
				return err
			}
			res := tx.Delete(&models.Category{}, "id = ?", id)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Category not found"})
				return
			}
			logger.Log.Error("failed to delete category", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete category"})
			return
		}

		InvalidateProductCache(store)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"deleted": true}})
	}
}
