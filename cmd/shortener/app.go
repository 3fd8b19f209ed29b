package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Popolzen/linkguard/internal/audit"
	"github.com/Popolzen/linkguard/internal/cache"
	"github.com/Popolzen/linkguard/internal/logger"
	"github.com/Popolzen/linkguard/internal/repository"
)

type App struct {
	server    *http.Server
	repo      repository.URLRepository
	cache     *cache.LinkCache
	publisher *audit.Publisher
}

// Close закрывает все ресурсы
func (a *App) Close() error {
	sugar := logger.Sugar()

	sugar.Info("Закрываем репозиторий...")
	if err := a.repo.Close(); err != nil {
		sugar.Warnw("repository close failed", "error", err)
	}

	if a.cache != nil {
		a.cache.Close()
	}

	sugar.Info("Закрываем audit publisher...")
	if err := a.publisher.Close(); err != nil {
		sugar.Warnw("audit publisher close failed", "error", err)
	}

	return nil
}

// Shutdown выполняет graceful shutdown с таймаутом
func (a *App) Shutdown(ctx context.Context) error {
	logger.Sugar().Info("Останавливаем HTTP сервер...")
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	return a.Close()
}
