package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/creditbazaar/marketplace-api/auth"
)

// SetupAuthRoutes registers the public "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.RegisterHandler(d.DB))
		authGroup.POST("/login", auth.LoginHandler(d.DB))
	}
}
