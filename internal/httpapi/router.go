// Package httpapi exposes the order and webhook endpoints over gin.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the endpoint groups mounted on the router.
type Handlers struct {
	Orders   *OrderHandlers
	Webhooks *WebhookHandlers
}

// NewRouter mounts all routes. Middleware (otelgin etc.) is attached by the caller.
func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	if handlers.Orders != nil {
		v1.POST("/orders", handlers.Orders.CreateOrder)
		v1.GET("/orders", handlers.Orders.ListOrders)
		v1.GET("/orders/:id", handlers.Orders.GetOrder)
		v1.POST("/orders/:id/payment", handlers.Orders.CreatePayment)
	}
	if handlers.Webhooks != nil {
		v1.POST("/webhooks/stripe", handlers.Webhooks.Stripe)
		v1.POST("/webhooks/coinbase", handlers.Webhooks.Coinbase)
		v1.POST("/webhooks/nowpayments", handlers.Webhooks.NOWPayments)
	}
	return router
}
