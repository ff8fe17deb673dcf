package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	commerce "github.com/boardhaven/commerce"
	"github.com/boardhaven/commerce/config"
	"github.com/boardhaven/commerce/handlers"
	"github.com/boardhaven/commerce/middleware"
	"github.com/boardhaven/commerce/tracing"
)

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	commerce    commerce.Commerce
	Product     handlers.ProductHandler
	PromoCode   handlers.PromoCodeHandler
	Checkout    handlers.CheckoutHandler
	Order       handlers.OrderHandler
	Fulfillment handlers.FulfillmentHandler
	Packaging   handlers.PackagingHandler
	Webhook     handlers.WebhookHandler
	RateLimiter *middleware.RateLimiter
}

func NewServer(
	cfg *config.Config,
	svc commerce.Commerce,
	Product handlers.ProductHandler,
	PromoCode handlers.PromoCodeHandler,
	Checkout handlers.CheckoutHandler,
	Order handlers.OrderHandler,
	Fulfillment handlers.FulfillmentHandler,
	Packaging handlers.PackagingHandler,
	Webhook handlers.WebhookHandler,
	RateLimiter *middleware.RateLimiter,
) *Server {
	return &Server{
		echo:        echo.New(),
		config:      cfg,
		commerce:    svc,
		Product:     Product,
		PromoCode:   PromoCode,
		Checkout:    Checkout,
		Order:       Order,
		Fulfillment: Fulfillment,
		Packaging:   Packaging,
		Webhook:     Webhook,
		RateLimiter: RateLimiter,
	}
}

// Start registers middlewares and routes, then listens on the provided address.
func (s *Server) Start(address string) error {
	s.registerMiddlewares()
	s.registerRoutes()
	return s.echo.Start(address)
}

// Run starts the server in a goroutine and blocks until an interrupt or
// SIGTERM arrives, then shuts down with a five second grace period.
func (s *Server) Run(address string) error {

	go func() {
		if err := s.Start(address); err != nil {
			s.echo.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.shutdown(ctx)
}

// shutdown stops accepting requests, then drains the webhook worker pool so
// queued events are processed before the process exits.
func (s *Server) shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.commerce.Close()
	return err
}

func (s *Server) registerMiddlewares() {
	s.echo.Use(echomw.Recover())
	if s.config.Tracing.Enabled {
		s.echo.Use(tracing.Middleware())
	}
}

func (s *Server) registerRoutes() {

	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	s.echo.GET("/products", s.Product.List)
	s.echo.GET("/products/:id", s.Product.Get)

	s.echo.POST("/promo-codes/validate", s.PromoCode.Validate, middleware.RateLimit(s.RateLimiter))

	s.echo.POST("/checkout/session", s.Checkout.CreateSession)
	s.echo.POST("/webhook/stripe", s.Webhook.HandleStripeWebhook)

	admin := s.echo.Group("/admin")

	admin.GET("/promo-codes", s.PromoCode.List)
	admin.POST("/promo-codes", s.PromoCode.Create)
	admin.GET("/promo-codes/:id", s.PromoCode.Get)
	admin.PUT("/promo-codes/:id", s.PromoCode.Update)
	admin.DELETE("/promo-codes/:id", s.PromoCode.Delete)

	admin.GET("/products", s.Product.AdminList)
	admin.POST("/products", s.Product.Create)
	admin.PUT("/products/:id", s.Product.Update)
	admin.DELETE("/products/:id", s.Product.Delete)

	admin.GET("/packaging-types", s.Packaging.List)
	admin.POST("/packaging-types", s.Packaging.Create)
	admin.PUT("/packaging-types/:id", s.Packaging.Update)

	admin.GET("/orders", s.Order.List)
	admin.GET("/orders/:id", s.Order.Get)
	admin.PUT("/orders/:id/status", s.Order.UpdateStatus)

	admin.POST("/fulfillment/scan", s.Fulfillment.Scan)
	admin.DELETE("/fulfillment/scan", s.Fulfillment.DeleteScan)
	admin.GET("/fulfillment/:orderID", s.Fulfillment.GetProgress)

	admin.GET("/webhooks/recent", s.Webhook.RecentEvents)
}
