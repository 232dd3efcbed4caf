package dealControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/logger"
	"github.com/creditbazaar/marketplace-api/models"
	"github.com/creditbazaar/marketplace-api/pricing"
)

type DealInput struct {
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description"`
	DiscountType string          `json:"discount_type" binding:"required"`
	Value        decimal.Decimal `json:"value" binding:"required"`
	MaxDiscount  decimal.Decimal `json:"max_discount"`
	StartsAt     time.Time       `json:"starts_at"`
	EndsAt       time.Time       `json:"ends_at"`
	Active       *bool           `json:"active"`
	ProductIDs   []uint          `json:"product_ids"`
}

// DealProductView is a product with its deal price computed at read time.
type DealProductView struct {
	Product         models.Product  `json:"product"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	Discount        decimal.Decimal `json:"discount"`
}

type DealView struct {
	Deal     models.Deal       `json:"deal"`
	Products []DealProductView `json:"products"`
}

func mapDiscountType(s string) (models.DiscountType, error) {
	switch models.DiscountType(s) {
	case models.DiscountTypePercentage:
		return models.DiscountTypePercentage, nil
	case models.DiscountTypeFixed:
		return models.DiscountTypeFixed, nil
	default:
		return "", errors.New("invalid discount type")
	}
}

// POST /api/admin/deals
func CreateDeal(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input DealInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		discountType, err := mapDiscountType(input.DiscountType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if !input.Value.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "value must be positive"})
			return
		}

		active := true
		if input.Active != nil {
			active = *input.Active
		}

		deal := models.Deal{
			Title:        input.Title,
			Description:  input.Description,
			DiscountType: discountType,
			Value:        input.Value,
			MaxDiscount:  input.MaxDiscount,
			StartsAt:     input.StartsAt,
			EndsAt:       input.EndsAt,
			Active:       active,
		}
		for _, pid := range input.ProductIDs {
			deal.Products = append(deal.Products, models.DealProduct{ProductID: pid})
		}

		if err := db.Create(&deal).Error; err != nil {
			logger.Log.Error("failed to create deal", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create deal"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": deal})
	}
}

// PUT /api/admin/deals/:id
func UpdateDeal(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var deal models.Deal
		if err := db.First(&deal, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Deal not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch deal"})
			return
		}

		var input DealInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		discountType, err := mapDiscountType(input.DiscountType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		active := deal.Active
		if input.Active != nil {
			active = *input.Active
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&deal).Updates(map[string]interface{}{
				"title":         input.Title,
				"description":   input.Description,
				"discount_type": discountType,
				"value":         input.Value,
				"max_discount":  input.MaxDiscount,
				"starts_at":     input.StartsAt,
				"ends_at":       input.EndsAt,
				"active":        active,
			}).Error; err != nil {
				return err
			}
			if input.ProductIDs == nil {
				return nil
			}
			if err := tx.Where("deal_id = ?", deal.ID).Delete(&models.DealProduct{}).Error; err != nil {
				return err
			}
			for _, pid := range input.ProductIDs {
				if err := tx.Create(&models.DealProduct{DealID: deal.ID, ProductID: pid}).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			logger.Log.Error("failed to update deal", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update deal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": deal})
	}
}

// GET /api/admin/deals
func GetAllDeals(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var deals []models.Deal
		if err := db.Preload("Products.Product").Order("created_at DESC").Find(&deals).Error; err != nil {
			logger.Log.Error("failed to fetch deals", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch deals"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": deals})
	}
}

// GET /api/deals/active is the storefront view with prices computed per
// product.
func GetActiveDeals(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		var deals []models.Deal
		if err := db.Preload("Products.Product").
			Where("active = ?", true).
			Find(&deals).Error; err != nil {
			logger.Log.Error("failed to fetch active deals", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch deals"})
			return
		}

		views := make([]DealView, 0, len(deals))
		for i := range deals {
			deal := deals[i]
			if !deal.CurrentAt(now) {
				continue
			}
			view := DealView{Deal: deal}
			for _, dp := range deal.Products {
				if dp.Product == nil || dp.Product.Status != models.ProductStatusActive {
					continue
				}
				discounted := pricing.DiscountedPrice(dp.Product.Price, &deal)
				view.Products = append(view.Products, DealProductView{
					Product:         *dp.Product,
					OriginalPrice:   dp.Product.Price,
					DiscountedPrice: discounted,
					Discount:        dp.Product.Price.Sub(discounted),
				})
			}
			views = append(views, view)
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
	}
}

// DELETE /api/admin/deals/:id
func DeleteDeal(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("deal_id = ?", id).Delete(&models.DealProduct{}).Error; err != nil {
				return err
			}
			res := tx.Delete(&models.Deal{}, "id = ?", id)
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
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Deal not found"})
				return
			}
			logger.Log.Error("failed to delete deal", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete deal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"deleted": true}})
	}
}
