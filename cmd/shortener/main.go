package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Popolzen/linkguard/internal/audit"
	"github.com/Popolzen/linkguard/internal/cache"
	"github.com/Popolzen/linkguard/internal/config"
	"github.com/Popolzen/linkguard/internal/config/db"
	"github.com/Popolzen/linkguard/internal/handler"
	"github.com/Popolzen/linkguard/internal/linkcheck"
	"github.com/Popolzen/linkguard/internal/logger"
	"github.com/Popolzen/linkguard/internal/metrics"
	"github.com/Popolzen/linkguard/internal/middleware/auth"
	"github.com/Popolzen/linkguard/internal/middleware/compressor"
	"github.com/Popolzen/linkguard/internal/middleware/subnet"
	"github.com/Popolzen/linkguard/internal/repository"
	"github.com/Popolzen/linkguard/internal/repository/database"
	"github.com/Popolzen/linkguard/internal/repository/filestorage"
	"github.com/Popolzen/linkguard/internal/repository/filtered"
	"github.com/Popolzen/linkguard/internal/repository/memory"
	"github.com/Popolzen/linkguard/internal/service/shortener"
	"github.com/Popolzen/linkguard/internal/slug"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// Доля ложных срабатываний фильтра Блума
const bloomFPRate = 0.01

func main() {
	printBuildInfo()

	cfg := config.NewConfig()

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatal("Не удалось инициализировать логгер:", err)
	}
	defer logger.Close()
	sugar := logger.Sugar()

	gin.SetMode(gin.ReleaseMode)

	// Запускаем pprof сервер на настраиваемом порту
	if cfg.PprofAddr != "" {
		go func() {
			sugar.Infof("pprof сервер запущен на http://%s/debug/pprof/", cfg.PprofAddr)
			if err := http.ListenAndServe(cfg.PprofAddr, nil); err != nil {
				sugar.Warnw("pprof server stopped", "error", err)
			}
		}()
	}

	ctx := context.Background()

	repo, err := initRepository(ctx, cfg)
	if err != nil {
		sugar.Fatalw("repository init failed", "error", err)
	}

	linkCache, err := cache.NewLinkCache(int64(cfg.CacheSize))
	if err != nil {
		sugar.Fatalw("cache init failed", "error", err)
	}

	validator, err := linkcheck.New(linkcheck.Options{
		SelfHosts:      cfg.AllSelfHosts(),
		BlockedDomains: cfg.BlockedDomains,
	})
	if err != nil {
		sugar.Fatalw("validator init failed", "error", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	urlService := shortener.NewURLService(repo, validator,
		slug.New(repo,
			slug.WithMaxAttempts(cfg.SlugAttempts),
			slug.WithReserved(handler.ReservedPaths...),
		),
		shortener.WithCache(linkCache),
		shortener.WithMetrics(m),
		shortener.WithLogger(logger.Log()),
	)

	publisher := initAudit(cfg)

	app := &App{
		server: &http.Server{
			Addr:              cfg.GetAddress(),
			Handler:           setupRouter(urlService, cfg, publisher, m),
			ReadHeaderTimeout: 5 * time.Second,
		},
		repo:      repo,
		cache:     linkCache,
		publisher: publisher,
	}

	go func() {
		sugar.Infof("URL Shortener запущен на http://%s", cfg.GetAddress())
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	waitForShutdown(app)
}

func printBuildInfo() {
	version := "N/A"
	date := "N/A"
	commit := "N/A"

	if buildVersion != "" {
		version = buildVersion
	}
	if buildDate != "" {
		date = buildDate
	}
	if buildCommit != "" {
		commit = buildCommit
	}

	fmt.Printf("Build version: %s\n", version)
	fmt.Printf("Build date: %s\n", date)
	fmt.Printf("Build commit: %s\n", commit)
}

// initRepository выбирает хранилище по конфигурации: БД, файл или память
func initRepository(ctx context.Context, cfg *config.Config) (repository.URLRepository, error) {
	sugar := logger.Sugar()

	var repo repository.URLRepository
	switch {
	case cfg.DBurl != "":
		dbInstance, err := db.NewDataBase(ctx, db.NewDBConfig(cfg.DBurl))
		if err != nil {
			return nil, err
		}
		version, err := dbInstance.Migrate()
		if err != nil {
			dbInstance.Close()
			return nil, err
		}
		repo = database.NewURLRepository(dbInstance.DB)
		sugar.Infow("Используется БД репозиторий", "schema_version", version)
	case cfg.GetFilePath() != "":
		repo = filestorage.NewURLRepository(cfg.GetFilePath())
		sugar.Infow("Используется файл", "path", cfg.GetFilePath())
	default:
		repo = memory.NewURLRepository()
		sugar.Info("Используется память")
	}

	if !cfg.UseBloom {
		return repo, nil
	}

	withFilter := filtered.NewURLRepository(repo, cache.NewSlugFilter(uint(cfg.BloomCapacity), bloomFPRate))
	n, err := withFilter.Warm(ctx)
	if err != nil {
		repo.Close()
		return nil, err
	}
	sugar.Infow("Фильтр Блума загружен", "slugs", n)
	return withFilter, nil
}

// initAudit подписывает наблюдателей аудита по конфигурации
func initAudit(cfg *config.Config) *audit.Publisher {
	sugar := logger.Sugar()
	publisher := audit.NewPublisher()

	// Файловый observer
	if cfg.GetAuditFile() != "" {
		fileObs, err := audit.NewFileObserver(cfg.GetAuditFile(), logger.Log())
		if err != nil {
			sugar.Warnw("file observer disabled", "error", err)
		} else {
			publisher.Subscribe(fileObs)
			sugar.Infof("Аудит в файл: %s", cfg.GetAuditFile())
		}
	}

	// HTTP observer
	if cfg.GetAuditURL() != "" {
		publisher.Subscribe(audit.NewHTTPObserver(cfg.GetAuditURL(), logger.Log()))
		sugar.Infof("Аудит на сервер: %s", cfg.GetAuditURL())
	}

	if cfg.LogLevel == "debug" {
		publisher.Subscribe(audit.NewLogObserver(logger.Log()))
	}

	return publisher
}

// setupRouter настраивает роуты и middleware
func setupRouter(urlService *shortener.URLService, cfg *config.Config, auditPub *audit.Publisher, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestResponseLogger())
	r.Use(m.Middleware())
	r.Use(compressor.Compresser())
	r.Use(auth.Middleware(cfg.CookieSecret))

	r.POST("/", handler.PostHandler(urlService, cfg, auditPub))
	r.POST("/api/shorten", handler.PostHandlerJSON(urlService, cfg, auditPub))
	r.POST("/api/check", handler.CheckHandler(urlService))
	r.GET("/api/slugs/:slug", handler.AvailabilityHandler(urlService))
	r.GET("/:id", handler.GetHandler(urlService, auditPub))
	r.GET("/ping", handler.PingHandler(urlService))

	// Метрики доступны только из доверенной подсети
	r.GET("/metrics", subnet.Trusted(cfg.TrustedSubnet, logger.Log()), gin.WrapH(promhttp.Handler()))
	return r
}

// waitForShutdown ждёт сигнала и останавливает приложение
func waitForShutdown(app *App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("Получен сигнал остановки, завершаем работу...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		logger.Sugar().Errorw("shutdown failed", "error", err)
		return
	}
	logger.Sugar().Info("Сервис остановлен gracefully")
}
