package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	appborrow "github.com/xiebiao/library/internal/application/borrow"
	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/cart"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/mq"
)

// app 组装完成的服务
type app struct {
	server  *http.Server
	sweeper *appborrow.Sweeper
}

func newApp(cfg *config.Config, engine *gin.Engine, sweeper *appborrow.Sweeper) *app {
	return &app{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		sweeper: sweeper,
	}
}

// ========================================
// 需要从配置提取参数的Provider
// ========================================

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer)
}

func providePolicy(cfg *config.Config) appborrow.Policy {
	return appborrow.Policy{
		LoanPeriod:         cfg.Borrow.LoanPeriod,
		PickupWindow:       cfg.Borrow.PickupWindow,
		MaxItems:           cfg.Borrow.MaxItems,
		MaxQuantityPerLine: cfg.Borrow.MaxQuantityPerLine,
	}
}

func provideCartLimits(cfg *config.Config) cart.Limits {
	return cart.Limits{MaxQuantityPerLine: cfg.Borrow.MaxQuantityPerLine}
}

// provideSnapshotCache 关闭缓存时返回nil接口(不能返回nil指针)
func provideSnapshotCache(cfg *config.Config, client *goredis.Client) bookcopy.SnapshotCache {
	if !cfg.AvailabilityCache.Enabled {
		return nil
	}
	return redis.NewAvailabilityCache(client, cfg.AvailabilityCache.TTL)
}

// provideEventPublisher 未启用MQ时事件直接丢弃
func provideEventPublisher(cfg *config.Config) (borrow.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return borrow.NopPublisher{}, func() {}, nil
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil, nil, err
	}
	return messaging.NewEventPublisher(publisher), func() { _ = publisher.Close() }, nil
}

func provideExpireStaleUseCase(cfg *config.Config, tickets *appborrow.TicketUseCase) *appborrow.ExpireStaleUseCase {
	return appborrow.NewExpireStaleUseCase(tickets, cfg.Borrow.SweepBatch)
}

func provideSweeper(cfg *config.Config, uc *appborrow.ExpireStaleUseCase) *appborrow.Sweeper {
	return appborrow.NewSweeper(uc, cfg.Borrow.SweepInterval)
}

func provideRouter(cfg *config.Config, h handler.Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	return handler.NewRouter(h, auth, handler.RouterOptions{
		ServiceName: cfg.Tracing.ServiceName,
		EnableDocs:  cfg.Server.Mode != "release",
	})
}
