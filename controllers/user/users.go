package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/logger"
	"github.com/creditbazaar/marketplace-api/models"
)

type UpdateUserInput struct {
	Name    *string         `json:"name"`
	Phone   *string         `json:"phone"`
	Address *models.Address `json:"address"`
}

type UpdateUserStatusInput struct {
	Status string `json:"status" binding:"required"`
}

type UpdateCreditLimitInput struct {
	CreditLimit decimal.Decimal `json:"credit_limit" binding:"required"`
}

// GET /api/user
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		var user models.User

		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
	}
}

// PUT /api/user
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		var user models.User

		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}

		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Phone != nil {
			updates["phone"] = *input.Phone
		}
		if input.Address != nil {
			updates["street"] = input.Address.Street
			updates["city"] = input.Address.City
			updates["state"] = input.Address.State
			updates["postal_code"] = input.Address.PostalCode
			updates["country"] = input.Address.Country
		}

		if len(updates) > 0 {
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				logger.Log.Error("failed to update user", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update user"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
	}
}

// GET /api/admin/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.
			Order("created_at desc").
			Find(&users).Error; err != nil {
			logger.Log.Error("failed to fetch users", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch users"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": users})
	}
}

// PUT /api/admin/users/:userID/status
func UpdateUserStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userID")
		var input UpdateUserStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		status := models.UserStatus(input.Status)
		switch status {
		case models.UserStatusActive, models.UserStatusInactive, models.UserStatusSuspended:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid user status"})
			return
		}

		res := db.Model(&models.User{}).Where("id = ?", userID).Update("status", status)
		if res.Error != nil {
			logger.Log.Error("failed to update user status", zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update user status"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"status": status}})
	}
}

// PUT /api/admin/users/:userID/credit-limit
func UpdateCreditLimitHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userID")
		var input UpdateCreditLimitInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if input.CreditLimit.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "credit_limit must not be negative"})
			return
		}

		res := db.Model(&models.User{}).Where("id = ?", userID).
			Update("credit_limit", input.CreditLimit)
		if res.Error != nil {
			logger.Log.Error("failed to update credit limit", zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update credit limit"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"credit_limit": input.CreditLimit}})
	}
}
