// Package main 借阅提醒服务:订阅借阅事件并通知读者
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/xiebiao/library/internal/application/notify"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/mq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}
	logger.Setup(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, "topic", cfg.MQ.Queue, []string{"borrow.ticket.*"})
	if err != nil {
		slog.Error("connect mq failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = consumer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := notify.NewHandler(notify.LogSender{})
	if err := consumer.Consume(ctx, h.Handle); err != nil {
		slog.Error("consume stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("notifier stopped")
}
