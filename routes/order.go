package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/creditbazaar/marketplace-api/controllers/order"
)

// SetupOrderRoutes registers checkout and the caller's order history.
func SetupOrderRoutes(api *gin.RouterGroup, d Deps) {
	api.POST("/checkout", orderControllers.CheckoutHandler(d.OrderStore, d.Bus))

	orders := api.Group("/orders")
	{
		orders.GET("", orderControllers.GetUserOrdersHandler(d.DB))
		orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(d.DB))
	}
}
