//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	commerce "github.com/boardhaven/commerce"
	"github.com/boardhaven/commerce/catalog"
	"github.com/boardhaven/commerce/config"
	"github.com/boardhaven/commerce/driver"
	"github.com/boardhaven/commerce/fulfillment"
	"github.com/boardhaven/commerce/handlers"
	"github.com/boardhaven/commerce/middleware"
	"github.com/boardhaven/commerce/order"
	"github.com/boardhaven/commerce/packaging"
	"github.com/boardhaven/commerce/promo"
	"github.com/boardhaven/commerce/server"
)

func InitializeServer() (*server.Server, error) {

	wire.Build(
		config.ProvideApplicationConfig,
		config.NewLogger,
		config.ProvidePostgresConn,
		config.ProvideRedisClient,
		driver.NewTransactionManager,
		catalog.NewRepository,
		catalog.NewService,
		promo.NewRepository,
		promo.NewUsageRepository,
		promo.NewService,
		order.NewRepository,
		order.NewService,
		packaging.NewRepository,
		packaging.NewService,
		fulfillment.NewRepository,
		fulfillment.NewService,
		commerce.NewStripeCommerce,
		middleware.ProvideRateLimiter,
		handlers.NewProductHandler,
		handlers.NewPromoCodeHandler,
		handlers.NewCheckoutHandler,
		handlers.NewOrderHandler,
		handlers.NewFulfillmentHandler,
		handlers.NewPackagingHandler,
		handlers.NewWebhookHandler,
		server.NewServer,
		wire.Bind(new(promo.OrderHistory), new(order.Repository)),
		wire.Bind(new(fulfillment.OrderStore), new(order.Repository)),
		wire.Bind(new(fulfillment.PackagingLookup), new(packaging.Repository)),
	)

	return &server.Server{}, nil
}
