package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/logger"
	"github.com/creditbazaar/marketplace-api/models"
)

type RegisterInput struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	AccountType string `json:"account_type"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/register
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))

		var count int64
		if err := db.Model(&models.Credential{}).Where("LOWER(email) = ?", email).Count(&count).Error; err != nil {
			logger.Log.Error("credential lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Registration failed"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Email already registered"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Registration failed"})
			return
		}

		accountType := models.AccountTypePersonal
		if input.AccountType == string(models.AccountTypeBusiness) {
			accountType = models.AccountTypeBusiness
		}

		id := uuid.NewString()
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&models.Credential{
				ID:           id,
				Email:        email,
				PasswordHash: string(hash),
			}).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.User{
				ID:          id,
				Email:       email,
				Name:        input.Name,
				AccountType: accountType,
				Status:      models.UserStatusActive,
			}).Error; err != nil {
				return err
			}
			// Every user gets a cart up front
			return tx.Create(&models.Cart{UserID: id}).Error
		})
		if err != nil {
			logger.Log.Error("registration failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Registration failed"})
			return
		}

		token, err := IssueToken(id, false)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data":    gin.H{"user_id": id, "token": token},
		})
	}
}

// POST /auth/login
func LoginHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))

		var cred models.Credential
		if err := db.Where("LOWER(email) = ?", email).First(&cred).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
				return
			}
			logger.Log.Error("credential lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Login failed"})
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(input.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", cred.ID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Profile not found"})
			return
		}
		if user.Status == models.UserStatusSuspended {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Account suspended"})
			return
		}

		token, err := IssueToken(user.ID, user.IsAdmin)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"token":      token,
				"user":       user,
				"expires_at": time.Now().Add(tokenTTL),
			},
		})
	}
}
