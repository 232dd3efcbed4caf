package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/cache"
	chatControllers "github.com/creditbazaar/marketplace-api/controllers/chat"
	orderControllers "github.com/creditbazaar/marketplace-api/controllers/order"
	userControllers "github.com/creditbazaar/marketplace-api/controllers/user"
	"github.com/creditbazaar/marketplace-api/events"
	"github.com/creditbazaar/marketplace-api/middleware"
)

// Deps carries everything the route groups need so main wires it up once.
type Deps struct {
	DB         *gorm.DB
	Cache      cache.Store
	CacheTTL   time.Duration
	Bus        *events.Bus
	OrderStore orderControllers.Store
	Directory  userControllers.Directory
	OrderHub   *orderControllers.WSHub
	ChatHub    *chatControllers.WSHub
}

// SetupRoutes wires up the public auth group, the JWT-protected storefront
// group, and the admin group on top of it.
func SetupRoutes(r *gin.Engine, d Deps) {
	SetupAuthRoutes(r, d)

	api := r.Group("/api")
	api.Use(middleware.ValidateToken)

	SetupUserRoutes(api, d)
	SetupOrderRoutes(api, d)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(d.DB))
	SetupAdminRoutes(admin, d)
}
