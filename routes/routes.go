package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/controllers"
)

type Controllers struct {
	Page         *controllers.PageController
	Cart         *controllers.CartController
	Product      *controllers.ProductController
	Notification *controllers.NotificationController
	Health       *controllers.HealthController
}

func SetupRoutes(router *gin.Engine, ctrl Controllers, session gin.HandlerFunc, staticDir string) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", ctrl.Health.Health)

	router.GET("/api/products", ctrl.Product.GetAllProducts)
	router.GET("/api/products/:id", ctrl.Product.GetProductByID)

	visitor := router.Group("/")
	visitor.Use(session)
	{
		visitor.GET("/", ctrl.Page.Index)
		visitor.GET("/cart", ctrl.Page.CartPage)

		visitor.GET("/api/cart", ctrl.Cart.GetCart)
		visitor.POST("/api/cart/items", ctrl.Cart.AddItem)
		visitor.PATCH("/api/cart/items/:id", ctrl.Cart.UpdateQuantity)
		visitor.POST("/api/cart/items/:id/increment", ctrl.Cart.Increment)
		visitor.POST("/api/cart/items/:id/decrement", ctrl.Cart.Decrement)
		visitor.DELETE("/api/cart/items/:id", ctrl.Cart.RemoveItem)
		visitor.POST("/api/cart/items/:id/remove", ctrl.Cart.RemoveItem)
		visitor.POST("/api/cart/checkout", ctrl.Cart.Checkout)

		visitor.GET("/api/notifications", ctrl.Notification.GetActive)
	}

	if staticDir != "" {
		router.Static("/static", staticDir)
	}
}
