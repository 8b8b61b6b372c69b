package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/shopcore/internal/app"
	"github.com/matthieukhl/shopcore/internal/config"
)

type Server struct {
	router *gin.Engine
	app    *app.App
}

// NewServer creates a new server instance
func NewServer(a *app.App, cfg config.ServerConfig) *Server {
	router := gin.New()
	router.Use(requestID(), requestLogger(a.Log), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.CORSOrigins
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AddAllowHeaders("Authorization", requestIDHeader)
	router.Use(cors.New(corsCfg))

	server := &Server{
		router: router,
		app:    a,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.POST("/register", s.register)
	}

	shop := api.Group("", s.basicAuth())
	{
		shop.GET("/products", s.listProducts)
		shop.GET("/products/:id", s.getProduct)
		shop.POST("/products/:id/reviews", s.addReview)
		shop.GET("/reviews/eligible", s.reviewable)

		shop.POST("/cart", s.viewCart)
		shop.POST("/cart/items", s.addCartItem)
		shop.POST("/cart/items/:id/remove", s.removeCartItem)
		shop.POST("/cart/coupon", s.applyCoupon)

		shop.POST("/orders", s.placeOrder)
		shop.GET("/orders", s.orderHistory)
	}

	admin := api.Group("/admin", s.basicAuth())
	{
		admin.GET("/dashboard", s.dashboard)
		admin.POST("/users", s.registerAny)

		admin.POST("/products", s.createProduct)
		admin.PUT("/products/:id", s.updateProduct)
		admin.PATCH("/products/:id/visibility", s.setVisibility)
		admin.DELETE("/products/:id", s.deleteProduct)
		admin.GET("/products/out-of-stock", s.outOfStock)

		admin.GET("/orders", s.listOrders)
		admin.PATCH("/orders/:id/status", s.updateStatus)

		admin.GET("/reports/revenue", s.revenue)
		admin.GET("/reports/top-product", s.topProduct)
	}
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.app.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "shopcore",
		"version": "0.1.0",
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
