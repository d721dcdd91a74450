// Package main 借阅服务API入口
//
// @title           图书馆借阅服务API
// @version         1.0
// @description     借书车、结算预约、到馆取书与归还
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

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
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}
	logger.Setup(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			slog.Error("init tracer failed", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	a, cleanup, err := buildApp(cfg)
	if err != nil {
		slog.Error("build app failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.sweeper.Run(ctx)

	go func() {
		slog.Info("http server listening", "addr", a.server.Addr, "mode", cfg.Server.Mode)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", "error", err)
	}
}

// buildApp 手动依赖注入,与wire.go中的InitializeApp保持一致
// 依赖链: Repository ← Service ← UseCase ← Handler
func buildApp(cfg *config.Config) (*app, func(), error) {
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	publisher, closePublisher, err := provideEventPublisher(cfg)
	if err != nil {
		_ = redisClient.Close()
		closeDB()
		return nil, nil, err
	}
	cleanup := func() {
		closePublisher()
		_ = redisClient.Close()
		closeDB()
	}

	// 基础设施层
	bookRepo := mysql.NewBookRepository(db)
	copyRepo := mysql.NewCopyRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	borrowRepo := mysql.NewBorrowRepository(db)
	txManager := mysql.NewTxManager(db)
	snapshotCache := provideSnapshotCache(cfg, redisClient)
	blacklist := redis.NewTokenBlacklist(redisClient)

	// 领域层
	availability := bookcopy.NewAvailabilityCalculator(copyRepo, snapshotCache)
	cartService := cart.NewService(cartRepo, bookRepo, availability, provideCartLimits(cfg))

	// 应用层
	policy := providePolicy(cfg)
	checkoutUC := appborrow.NewCheckoutUseCase(borrowRepo, copyRepo, cartRepo, bookRepo, txManager, publisher, snapshotCache, policy)
	ticketUC := appborrow.NewTicketUseCase(borrowRepo, copyRepo, txManager, publisher, snapshotCache, policy)
	queryUC := appborrow.NewQueryUseCase(borrowRepo, bookRepo)
	cartUC := appcart.NewCartUseCase(cartService)
	sweeper := provideSweeper(cfg, provideExpireStaleUseCase(cfg, ticketUC))

	// 接口层
	handlers := handler.Handlers{
		Book:   handler.NewBookHandler(appbook.NewListBooksUseCase(bookRepo, availability), appbook.NewGetAvailabilityUseCase(bookRepo, copyRepo)),
		Cart:   handler.NewCartHandler(cartUC),
		Borrow: handler.NewBorrowHandler(checkoutUC, ticketUC, queryUC, cartUC),
		Auth:   handler.NewAuthHandler(blacklist),
	}
	auth := middleware.NewAuthMiddleware(provideJWTManager(cfg), blacklist)

	return newApp(cfg, provideRouter(cfg, handlers, auth), sweeper), cleanup, nil
}
