//go:build wireinject
// +build wireinject

// Wire依赖注入配置,`wire gen ./cmd/api`生成wire_gen.go
// 生成前main使用buildApp手动组装,两者的依赖图保持一致

package main

import (
	"github.com/google/wire"

	appbook "github.com/xiebiao/library/internal/application/book"
	appborrow "github.com/xiebiao/library/internal/application/borrow"
	appcart "github.com/xiebiao/library/internal/application/cart"
	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/cart"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
)

var infrastructureSet = wire.NewSet(
	mysql.NewDB,
	redis.NewClient,
	provideSnapshotCache,
	provideEventPublisher,
)

var repositorySet = wire.NewSet(
	mysql.NewBookRepository,
	mysql.NewCopyRepository,
	mysql.NewCartRepository,
	mysql.NewBorrowRepository,
	mysql.NewTxManager,
	wire.Bind(new(appborrow.TxManager), new(*mysql.TxManager)),
	redis.NewTokenBlacklist,
	wire.Bind(new(middleware.TokenChecker), new(*redis.TokenBlacklist)),
	wire.Bind(new(handler.TokenRevoker), new(*redis.TokenBlacklist)),
)

var domainSet = wire.NewSet(
	bookcopy.NewAvailabilityCalculator,
	provideCartLimits,
	cart.NewService,
)

var applicationSet = wire.NewSet(
	providePolicy,
	appbook.NewListBooksUseCase,
	appbook.NewGetAvailabilityUseCase,
	appcart.NewCartUseCase,
	appborrow.NewCheckoutUseCase,
	appborrow.NewTicketUseCase,
	appborrow.NewQueryUseCase,
	provideExpireStaleUseCase,
	provideSweeper,
	wire.Bind(new(handler.CartService), new(*appcart.CartUseCase)),
	wire.Bind(new(handler.CheckoutService), new(*appborrow.CheckoutUseCase)),
	wire.Bind(new(handler.TicketService), new(*appborrow.TicketUseCase)),
	wire.Bind(new(handler.TicketQuery), new(*appborrow.QueryUseCase)),
)

var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewBookHandler,
	handler.NewCartHandler,
	handler.NewBorrowHandler,
	handler.NewAuthHandler,
	wire.Struct(new(handler.Handlers), "*"),
	provideRouter,
)

// InitializeApp 初始化整个应用
func InitializeApp(cfg *config.Config) (*app, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
