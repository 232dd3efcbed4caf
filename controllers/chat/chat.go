package chatControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/events"
	"github.com/creditbazaar/marketplace-api/logger"
	"github.com/creditbazaar/marketplace-api/models"
)

type ConversationInput struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

type MessageInput struct {
	Body string `json:"body" binding:"required"`
}

// POST /api/chat/conversations opens a thread with its first message.
func CreateConversation(db *gorm.DB, bus *events.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input ConversationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		conversation := models.ChatConversation{
			ID:      uuid.NewString(),
			UserID:  userID,
			Subject: input.Subject,
			Status:  models.ConversationStatusOpen,
		}
		message := models.ChatMessage{
			ID:             uuid.NewString(),
			ConversationID: conversation.ID,
			SenderID:       userID,
			SenderRole:     models.SenderRoleUser,
			Body:           input.Body,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&conversation).Error; err != nil {
				return err
			}
			return tx.Create(&message).Error
		})
		if err != nil {
			logger.Log.Error("failed to create conversation", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create conversation"})
			return
		}

		bus.Publish(events.TopicChatMessage, MessageEvent{
			Message:            message,
			ConversationUserID: conversation.UserID,
		})
		conversation.Messages = []models.ChatMessage{message}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": conversation})
	}
}

// GET /api/chat/conversations lists the caller's threads, minus the ones
// they hid.
func GetUserConversations(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var conversations []models.ChatConversation
		if err := db.Where("user_id = ? AND deleted_by_user = ?", userID, false).
			Order("updated_at DESC").
			Find(&conversations).Error; err != nil {
			logger.Log.Error("failed to fetch conversations", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch conversations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": conversations})
	}
}

// GET /api/admin/chat/conversations
func GetAllConversations(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var conversations []models.ChatConversation
		if err := db.Where("deleted_by_admin = ?", false).
			Order("updated_at DESC").
			Find(&conversations).Error; err != nil {
			logger.Log.Error("failed to fetch conversations", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch conversations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": conversations})
	}
}

// loadConversation fetches the thread and enforces ownership for non-admins.
func loadConversation(c *gin.Context, db *gorm.DB, id string) (*models.ChatConversation, bool) {
	var conversation models.ChatConversation
	if err := db.First(&conversation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Conversation not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch conversation"})
		return nil, false
	}

	if _, isAdmin := c.Get("admin_user"); !isAdmin {
		if conversation.UserID != c.GetString("user_id") {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Access denied"})
			return nil, false
		}
	}
	return &conversation, true
}

// GET /api/chat/conversations/:id/messages
func GetMessages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversation, ok := loadConversation(c, db, c.Param("id"))
		if !ok {
			return
		}

		// An admin sees messages the user hid and vice versa, but nobody
		// sees what their own side removed.
		deletedColumn := "deleted_by_user"
		if _, isAdmin := c.Get("admin_user"); isAdmin {
			deletedColumn = "deleted_by_admin"
		}

		var messages []models.ChatMessage
		if err := db.Where("conversation_id = ? AND "+deletedColumn+" = ?", conversation.ID, false).
			Order("created_at ASC").
			Find(&messages).Error; err != nil {
			logger.Log.Error("failed to fetch messages", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch messages"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": messages})
	}
}

// POST /api/chat/conversations/:id/messages
func PostMessage(db *gorm.DB, bus *events.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversation, ok := loadConversation(c, db, c.Param("id"))
		if !ok {
			return
		}
		if conversation.Status == models.ConversationStatusClosed {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Conversation is closed"})
			return
		}

		var input MessageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		role := models.SenderRoleUser
		if _, isAdmin := c.Get("admin_user"); isAdmin {
			role = models.SenderRoleAdmin
		}

		message := models.ChatMessage{
			ID:             uuid.NewString(),
			ConversationID: conversation.ID,
			SenderID:       c.GetString("user_id"),
			SenderRole:     role,
			Body:           input.Body,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&message).Error; err != nil {
				return err
			}
			// A reply makes the thread visible again to whoever hid it.
			return tx.Model(&models.ChatConversation{}).
				Where("id = ?", conversation.ID).
				Updates(map[string]interface{}{
					"deleted_by_user":  false,
					"deleted_by_admin": false,
					"updated_at":       time.Now(),
				}).Error
		})
		if err != nil {
			logger.Log.Error("failed to post message", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to post message"})
			return
		}

		bus.Publish(events.TopicChatMessage, MessageEvent{
			Message:            message,
			ConversationUserID: conversation.UserID,
		})
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": message})
	}
}

// PUT /api/admin/chat/conversations/:id/status
func UpdateConversationStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		status := models.ConversationStatus(input.Status)
		if status != models.ConversationStatusOpen && status != models.ConversationStatusClosed {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid status"})
			return
		}

		res := db.Model(&models.ChatConversation{}).
			Where("id = ?", c.Param("id")).
			Update("status", status)
		if res.Error != nil {
			logger.Log.Error("failed to update conversation status", zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update status"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"status": status}})
	}
}

// DELETE /api/chat/conversations/:id and /api/admin/chat/conversations/:id
// hide the thread and its messages for the calling side only.
func SoftDeleteConversation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversation, ok := loadConversation(c, db, c.Param("id"))
		if !ok {
			return
		}

		column := "deleted_by_user"
		if _, isAdmin := c.Get("admin_user"); isAdmin {
			column = "deleted_by_admin"
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.ChatConversation{}).
				Where("id = ?", conversation.ID).
				Update(column, true).Error; err != nil {
				return err
			}
			return tx.Model(&models.ChatMessage{}).
				Where("conversation_id = ?", conversation.ID).
				Update(column, true).Error
		})
		if err != nil {
			logger.Log.Error("failed to hide conversation", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete conversation"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"deleted": true}})
	}
}

// DELETE /api/admin/chat/conversations/:id/purge removes the thread for
// everyone. Messages go first so a failure never strands orphans.
func HardDeleteConversation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("conversation_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
				return err
			}
			res := tx.Delete(&models.ChatConversation{}, "id = ?", id)
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
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Conversation not found"})
				return
			}
			logger.Log.Error("failed to purge conversation", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete conversation"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"deleted": true}})
	}
}
