package chatControllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/events"
	"github.com/creditbazaar/marketplace-api/logger"
	"github.com/creditbazaar/marketplace-api/models"
)

func newChatTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.ChatConversation{}, &models.ChatMessage{}))
	return db
}

// newChatRouter registers the chat surface for one caller. Admin callers get
// the admin listing and the admin_user context the handlers key off.
func newChatRouter(db *gorm.DB, userID string, admin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger.Initialize("development")
	bus := events.NewBus(zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		if admin {
			c.Set("admin_user", &models.User{ID: userID, IsAdmin: true})
		}
	})

	r.POST("/conversations", CreateConversation(db, bus))
	if admin {
		r.GET("/conversations", GetAllConversations(db))
	} else {
		r.GET("/conversations", GetUserConversations(db))
	}
	r.GET("/conversations/:id/messages", GetMessages(db))
	r.POST("/conversations/:id/messages", PostMessage(db, bus))
	r.DELETE("/conversations/:id", SoftDeleteConversation(db))
	r.DELETE("/conversations/:id/purge", HardDeleteConversation(db))
	return r
}

func doChat(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createConversation(t *testing.T, r *gin.Engine) models.ChatConversation {
	t.Helper()
	w := doChat(t, r, http.MethodPost, "/conversations",
		`{"subject":"missing refund","body":"where is my refund?"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data models.ChatConversation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ID)
	return resp.Data
}

func listConversations(t *testing.T, r *gin.Engine) []models.ChatConversation {
	t.Helper()
	w := doChat(t, r, http.MethodGet, "/conversations", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data []models.ChatConversation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func listMessages(t *testing.T, r *gin.Engine, conversationID string) []models.ChatMessage {
	t.Helper()
	w := doChat(t, r, http.MethodGet, "/conversations/"+conversationID+"/messages", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data []models.ChatMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestUserSoftDeleteHidesThreadForUserOnly(t *testing.T) {
	db := newChatTestDB(t)
	user := newChatRouter(db, "customer-1", false)
	admin := newChatRouter(db, "admin-1", true)

	conv := createConversation(t, user)

	w := doChat(t, user, http.MethodDelete, "/conversations/"+conv.ID, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Empty(t, listConversations(t, user))
	assert.Empty(t, listMessages(t, user, conv.ID))

	// Support still sees the thread and its messages.
	adminConvs := listConversations(t, admin)
	require.Len(t, adminConvs, 1)
	assert.Equal(t, conv.ID, adminConvs[0].ID)
	assert.Len(t, listMessages(t, admin, conv.ID), 1)
}

func TestAdminSoftDeleteHidesThreadForAdminOnly(t *testing.T) {
	db := newChatTestDB(t)
	user := newChatRouter(db, "customer-1", false)
	admin := newChatRouter(db, "admin-1", true)

	conv := createConversation(t, user)

	w := doChat(t, admin, http.MethodDelete, "/conversations/"+conv.ID, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Empty(t, listConversations(t, admin))

	userConvs := listConversations(t, user)
	require.Len(t, userConvs, 1)
	assert.Equal(t, conv.ID, userConvs[0].ID)
	assert.Len(t, listMessages(t, user, conv.ID), 1)
}

func TestReplyUnhidesHiddenThread(t *testing.T) {
	db := newChatTestDB(t)
	user := newChatRouter(db, "customer-1", false)
	admin := newChatRouter(db, "admin-1", true)

	conv := createConversation(t, user)

	w := doChat(t, user, http.MethodDelete, "/conversations/"+conv.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, listConversations(t, user))

	w = doChat(t, admin, http.MethodPost, "/conversations/"+conv.ID+"/messages",
		`{"body":"refund was sent today"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The reply brings the thread back into the customer's list, and the
	// reply itself is visible to them.
	userConvs := listConversations(t, user)
	require.Len(t, userConvs, 1)

	msgs := listMessages(t, user, conv.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, "refund was sent today", msgs[0].Body)
	assert.Equal(t, models.SenderRoleAdmin, msgs[0].SenderRole)
}

func TestHardDeleteRemovesThreadForEveryone(t *testing.T) {
	db := newChatTestDB(t)
	user := newChatRouter(db, "customer-1", false)
	admin := newChatRouter(db, "admin-1", true)

	conv := createConversation(t, user)

	w := doChat(t, admin, http.MethodDelete, "/conversations/"+conv.ID+"/purge", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Empty(t, listConversations(t, user))
	assert.Empty(t, listConversations(t, admin))

	w = doChat(t, user, http.MethodGet, "/conversations/"+conv.ID+"/messages", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var orphans int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestUserCannotTouchForeignConversation(t *testing.T) {
	db := newChatTestDB(t)
	owner := newChatRouter(db, "customer-1", false)
	other := newChatRouter(db, "customer-2", false)

	conv := createConversation(t, owner)

	w := doChat(t, other, http.MethodGet, "/conversations/"+conv.ID+"/messages", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doChat(t, other, http.MethodDelete, "/conversations/"+conv.ID, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
