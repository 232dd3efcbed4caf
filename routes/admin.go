package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/creditbazaar/marketplace-api/controllers/cart"
	chatControllers "github.com/creditbazaar/marketplace-api/controllers/chat"
	dealControllers "github.com/creditbazaar/marketplace-api/controllers/deal"
	orderControllers "github.com/creditbazaar/marketplace-api/controllers/order"
	productcontroller "github.com/creditbazaar/marketplace-api/controllers/product"
	userControllers "github.com/creditbazaar/marketplace-api/controllers/user"
)

// SetupAdminRoutes registers the back-office endpoints. The group carries
// JWT validation plus the admin check.
func SetupAdminRoutes(admin *gin.RouterGroup, d Deps) {
	// User management
	users := admin.Group("/users")
	{
		users.GET("", userControllers.GetAllUsers(d.DB))
		users.POST("", userControllers.ProvisionUserHandler(d.Directory))
		users.PUT("/:userID/status", userControllers.UpdateUserStatusHandler(d.DB))
		users.PUT("/:userID/credit-limit", userControllers.UpdateCreditLimitHandler(d.DB))
	}
	admin.POST("/deep-clean", userControllers.DeepCleanHandler(d.Directory))
	admin.GET("/user-cart/:user_id", cartControllers.GetAdminUserCart(d.DB))

	// Product management
	products := admin.Group("/products")
	{
		products.POST("", productcontroller.CreateProduct(d.DB, d.Cache, d.Bus))
		products.PUT("/:id", productcontroller.UpdateProduct(d.DB, d.Cache, d.Bus))
		products.DELETE("/:id", productcontroller.DeleteProduct(d.DB, d.Cache, d.Bus))
		products.GET("/export-excel", productcontroller.ExportProductsToExcel(d.DB))
	}

	// Category management
	categories := admin.Group("/categories")
	{
		categories.POST("", productcontroller.CreateCategory(d.DB, d.Cache))
		categories.PUT("/:id", productcontroller.UpdateCategory(d.DB, d.Cache))
		categories.GET("", productcontroller.GetAllCategories(d.DB))
		categories.DELETE("/:id", productcontroller.DeleteCategory(d.DB, d.Cache))
	}

	// Deal management
	deals := admin.Group("/deals")
	{
		deals.POST("", dealControllers.CreateDeal(d.DB))
		deals.PUT("/:id", dealControllers.UpdateDeal(d.DB))
		deals.GET("", dealControllers.GetAllDeals(d.DB))
		deals.DELETE("/:id", dealControllers.DeleteDeal(d.DB))
	}

	// Order management
	orders := admin.Group("/orders")
	{
		orders.GET("", orderControllers.GetAllOrdersHandler(d.DB))
		orders.GET("/ws", d.OrderHub.Handler())
		orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(d.DB))
		orders.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(d.DB))
		orders.PUT("/:orderID/payment-status", orderControllers.UpdatePaymentStatusHandler(d.DB))
		orders.DELETE("/:orderID", orderControllers.DeleteOrderHandler(d.DB))
	}

	// Support chat
	chat := admin.Group("/chat")
	{
		chat.GET("/conversations", chatControllers.GetAllConversations(d.DB))
		chat.GET("/conversations/:id/messages", chatControllers.GetMessages(d.DB))
		chat.POST("/conversations/:id/messages", chatControllers.PostMessage(d.DB, d.Bus))
		chat.PUT("/conversations/:id/status", chatControllers.UpdateConversationStatus(d.DB))
		chat.DELETE("/conversations/:id", chatControllers.SoftDeleteConversation(d.DB))
		chat.DELETE("/conversations/:id/purge", chatControllers.HardDeleteConversation(d.DB))
		chat.GET("/ws", d.ChatHub.AdminHandler())
	}
}
