package userControllers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creditbazaar/marketplace-api/logger"
)

type DeepCleanRequest struct {
	Email string `json:"email" binding:"required,email"`
	Force bool   `json:"force"`
}

type CleanStep struct {
	Step    string `json:"step"`
	Target  string `json:"target,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CleanReport is the structured result of a deep-clean run. Success means
// every credential matching the email is gone; CanProceedWithCreation means
// the email can be registered again.
type CleanReport struct {
	Email                  string      `json:"email"`
	Steps                  []CleanStep `json:"steps"`
	Success                bool        `json:"success"`
	CanProceedWithCreation bool        `json:"can_proceed_with_creation"`
}

func (r *CleanReport) record(step, target string, err error) bool {
	s := CleanStep{Step: step, Target: target, Success: err == nil}
	if err != nil {
		s.Error = err.Error()
	}
	r.Steps = append(r.Steps, s)
	return err == nil
}

// DeepClean makes an email address available for re-registration by removing
// or anonymizing every credential and profile tied to it.
//
// Accounts with order history are anonymized rather than deleted unless
// force is set, so orders keep a referent. Sub-step failures are recorded
// and do not abort later steps; the run is best-effort throughout.
func DeepClean(ctx context.Context, dir Directory, email string, force bool) *CleanReport {
	report := &CleanReport{Email: email}

	creds, err := dir.CredentialsByEmail(ctx, email)
	if !report.record("lookup_credentials", email, err) {
		return report
	}
	if len(creds) == 0 {
		report.record("no_credentials_found", email, nil)
		report.Success = true
		report.CanProceedWithCreation = true
		return report
	}

	allDeleted := true
	for _, cred := range creds {
		_, perr := dir.ProfileByID(ctx, cred.ID)
		hasProfile := perr == nil
		if perr != nil && !errors.Is(perr, ErrProfileNotFound) {
			report.record("lookup_profile", cred.ID, perr)
		}

		hasOrders := false
		if hasProfile {
			hasOrders, err = dir.HasOrders(ctx, cred.ID)
			if err != nil {
				report.record("check_orders", cred.ID, err)
			}
		}

		if hasProfile && hasOrders && !force {
			// Keep the profile row for order history, but scramble it so the
			// email is freed and the account is unusable.
			anon := AnonymizedProfile{
				Name:  "Deleted User",
				Email: fmt.Sprintf("deleted-%s@removed.invalid", randomSuffix()),
			}
			report.record("anonymize_profile", cred.ID, dir.AnonymizeProfile(ctx, cred.ID, anon))
		} else if hasProfile {
			report.record("delete_chat_messages", cred.ID, dir.DeleteChatMessages(ctx, cred.ID))
			report.record("delete_conversations", cred.ID, dir.DeleteConversations(ctx, cred.ID))
			report.record("delete_order_items", cred.ID, dir.DeleteOrderItems(ctx, cred.ID))
			report.record("delete_orders", cred.ID, dir.DeleteOrders(ctx, cred.ID))
			report.record("delete_cart", cred.ID, dir.DeleteCart(ctx, cred.ID))
			report.record("delete_profile", cred.ID, dir.DeleteProfile(ctx, cred.ID))
		}

		if !report.record("delete_credential", cred.ID, dir.DeleteCredential(ctx, cred.ID)) {
			allDeleted = false
		}
	}

	report.Success = allDeleted
	report.CanProceedWithCreation = allDeleted
	return report
}

func randomSuffix() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

// POST /api/admin/deep-clean
func DeepCleanHandler(dir Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DeepCleanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		report := DeepClean(c.Request.Context(), dir, req.Email, req.Force)
		if !report.Success {
			logger.Log.Warn("deep clean incomplete",
				zap.String("email", req.Email), zap.Any("steps", report.Steps))
		}
		c.JSON(http.StatusOK, report)
	}
}
