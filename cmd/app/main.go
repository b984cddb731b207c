package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BuzzLyutic/todo-api/internal/config"
	"github.com/BuzzLyutic/todo-api/internal/handler"
	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
	"github.com/BuzzLyutic/todo-api/internal/worker"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		// логгера еще нет, поднимаем временный
		zap.NewExample().Fatal("Failed to load config", zap.Error(err))
	}

	// Подключаем логгер
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		zap.NewExample().Fatal("Failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	// Хранилище выбирается один раз по service.type
	store, err := repo.New(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to create storage", zap.String("type", cfg.Service.Type), zap.Error(err))
	}
	defer store.Close()
	logger.Info("Storage selected", zap.String("type", cfg.Service.Type))

	svc := service.NewTodoService(store, logger)
	ids := model.NewIDAllocator()

	// Схема создается в фоне, сервер принимает запросы сразу
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	boot := worker.NewBootstrap(svc, ids, logger, cfg.Bootstrap.RetryInterval)
	boot.Start(ctx)

	h := handler.NewTodoHandler(svc, ids, boot.Ready, logger)

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      handler.NewRouter(h),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	boot.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
		return
	}
	logger.Info("Server stopped successfully!")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
