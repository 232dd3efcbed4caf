package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/creditbazaar/marketplace-api/controllers/cart"
	chatControllers "github.com/creditbazaar/marketplace-api/controllers/chat"
	dealControllers "github.com/creditbazaar/marketplace-api/controllers/deal"
	productcontroller "github.com/creditbazaar/marketplace-api/controllers/product"
	userControllers "github.com/creditbazaar/marketplace-api/controllers/user"
)

// SetupUserRoutes registers the storefront endpoints. The group already
// carries JWT validation.
func SetupUserRoutes(api *gin.RouterGroup, d Deps) {
	// Profile
	api.GET("/profile", userControllers.GetUser(d.DB))
	api.PUT("/profile", userControllers.UpdateUser(d.DB))

	// Catalog
	api.GET("/products", productcontroller.GetProducts(d.DB, d.Cache, d.CacheTTL))
	api.GET("/products/:id", productcontroller.GetProductByID(d.DB))
	api.GET("/categories", productcontroller.GetAllCategoriesWithProducts(d.DB))
	api.GET("/deals/active", dealControllers.GetActiveDeals(d.DB))

	// Shopping cart
	cart := api.Group("/cart")
	{
		cart.GET("", cartControllers.GetUserCart(d.DB))
		cart.POST("", cartControllers.UpdateCartItem(d.DB))
		cart.DELETE("/:product_id", cartControllers.DeleteCartItem(d.DB))
		cart.DELETE("", cartControllers.ClearUserCart(d.DB))
	}

	// Support chat
	chat := api.Group("/chat")
	{
		chat.POST("/conversations", chatControllers.CreateConversation(d.DB, d.Bus))
		chat.GET("/conversations", chatControllers.GetUserConversations(d.DB))
		chat.GET("/conversations/:id/messages", chatControllers.GetMessages(d.DB))
		chat.POST("/conversations/:id/messages", chatControllers.PostMessage(d.DB, d.Bus))
		chat.DELETE("/conversations/:id", chatControllers.SoftDeleteConversation(d.DB))
		chat.GET("/ws", d.ChatHub.Handler())
	}
}
