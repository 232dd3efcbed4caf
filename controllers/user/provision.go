package userControllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/creditbazaar/marketplace-api/auth"
	"github.com/creditbazaar/marketplace-api/logger"
	"github.com/creditbazaar/marketplace-api/models"
)

var ErrEmailRegistered = errors.New("email already registered")

type ProvisionInput struct {
	Name        string          `json:"name" binding:"required"`
	Email       string          `json:"email" binding:"required,email"`
	AccountType string          `json:"account_type"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Phone       string          `json:"phone"`
	IsAdmin     bool            `json:"is_admin"`
	Address     models.Address  `json:"address"`
}

type ProvisionResult struct {
	User     *models.User `json:"user"`
	Password string       `json:"password"`
}

// ProvisionUser creates a user with an auto-generated temporary password,
// guaranteeing email uniqueness across the profile and credential tables.
// Any failure after the credential exists deletes it again before returning.
func ProvisionUser(ctx context.Context, dir Directory, in ProvisionInput) (*ProvisionResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	exists, err := dir.ProfileEmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailRegistered
	}

	// A stale credential without a profile can linger after a partial
	// deep-clean; clear it so the insert below cannot hit the unique index.
	stale, err := dir.CredentialsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	for _, cred := range stale {
		if err := dir.DeleteCredential(ctx, cred.ID); err != nil {
			return nil, err
		}
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	cred := &models.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := dir.CreateCredential(ctx, cred); err != nil {
		return nil, err
	}

	accountType := models.AccountTypePersonal
	if in.AccountType == string(models.AccountTypeBusiness) {
		accountType = models.AccountTypeBusiness
	}
	user := &models.User{
		ID:          cred.ID,
		Email:       email,
		Name:        in.Name,
		Phone:       in.Phone,
		AccountType: accountType,
		CreditLimit: in.CreditLimit,
		IsAdmin:     in.IsAdmin,
		Status:      models.UserStatusActive,
		Address:     in.Address,
	}

	err = dir.CreateProfile(ctx, user)
	if errors.Is(err, ErrProfileExists) {
		// Id collision with an orphaned profile: remove it and its dependent
		// rows, then retry the insert once.
		_ = dir.DeleteOrderItems(ctx, cred.ID)
		_ = dir.DeleteOrders(ctx, cred.ID)
		_ = dir.DeleteCart(ctx, cred.ID)
		if derr := dir.DeleteProfile(ctx, cred.ID); derr == nil {
			err = dir.CreateProfile(ctx, user)
		}
	}
	if err != nil {
		if derr := dir.DeleteCredential(ctx, cred.ID); derr != nil {
			logger.Log.Error("provision: compensating credential delete failed",
				zap.String("credential_id", cred.ID), zap.Error(derr))
		}
		return nil, err
	}

	return &ProvisionResult{User: user, Password: password}, nil
}

// POST /api/admin/users
func ProvisionUserHandler(dir Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProvisionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if input.CreditLimit.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "credit_limit must not be negative"})
			return
		}

		result, err := ProvisionUser(c.Request.Context(), dir, input)
		if err != nil {
			if errors.Is(err, ErrEmailRegistered) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			logger.Log.Error("user provisioning failed",
				zap.String("email", input.Email), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create user"})
			return
		}

		// The temporary password is returned in-band once; it is never stored
		// in clear anywhere.
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"user":     result.User,
			"password": result.Password,
		})
	}
}
