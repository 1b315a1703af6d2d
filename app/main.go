package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"supplies-bot/internal/jobs"
	"supplies-bot/internal/routes"
	"supplies-bot/pkg/config"
	"supplies-bot/pkg/database/postgresql"
	applogger "supplies-bot/pkg/logger"
	"supplies-bot/pkg/telegram"
	"supplies-bot/pkg/wbapi"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := applogger.NewLogger()
	defer logger.Sync()

	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("некорректная конфигурация", zap.Error(err))
	}

	ctx := context.Background()

	// --- БАЗЫ ДАННЫХ ---
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()
	logger.Info("подключено к PostgreSQL")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis",
			zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	// --- ВНЕШНИЕ СЕРВИСЫ ---
	wbClient, err := wbapi.NewClient(cfg.WB.Token)
	if err != nil {
		logger.Fatal("не удалось создать клиент маркетплейса", zap.Error(err))
	}
	tgService := telegram.NewService(cfg.Telegram.BotToken)

	runner := jobs.NewRunner(wbClient, tgService, jobs.RunnerConfig{
		Workers:          cfg.Bot.JobWorkers,
		QueueSize:        cfg.Bot.JobQueueSize,
		SuppliesQuantity: cfg.Bot.SuppliesQuantity,
	}, logger)

	// --- HTTP ---
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("паника в обработчике",
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)))
			return err
		},
	}))

	routes.InitRouter(e, dbConn, redisClient, wbClient, tgService, runner, cfg, logger)

	go func() {
		logger.Info("сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ошибка запуска сервера", zap.Error(err))
		}
	}()

	// --- ОСТАНОВКА ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("останавливаемся")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("ошибка остановки сервера", zap.Error(err))
	}
	// Принятые фоновые задания доделываются до конца
	runner.Stop()
	logger.Info("остановлено")
}
