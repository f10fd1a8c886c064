package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/cohort-analytics-api/api/swagger"
	"github.com/noah-isme/cohort-analytics-api/internal/handler"
	internalmiddleware "github.com/noah-isme/cohort-analytics-api/internal/middleware"
	"github.com/noah-isme/cohort-analytics-api/internal/repository"
	"github.com/noah-isme/cohort-analytics-api/internal/repository/memstore"
	"github.com/noah-isme/cohort-analytics-api/internal/service"
	"github.com/noah-isme/cohort-analytics-api/pkg/cache"
	"github.com/noah-isme/cohort-analytics-api/pkg/config"
	"github.com/noah-isme/cohort-analytics-api/pkg/database"
	"github.com/noah-isme/cohort-analytics-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/cohort-analytics-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/cohort-analytics-api/pkg/middleware/requestid"
	"github.com/noah-isme/cohort-analytics-api/pkg/tracing"
)

// @title Cohort Analytics API
// @version 1.0.0
// @description Teacher-facing analytics over tutoring sessions, messages, takeaways, FAQs and mastery.
// @BasePath /api
// @schemes http

const shutdownTimeout = 10 * time.Second

// stores bundles the read models backing the analytics services.
type stores struct {
	cohorts   service.CohortRepository
	activity  service.ActivityRepository
	takeaways service.TakeawayRepository
	faqs      service.FAQRepository
	mastery   service.MasteryRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg)
	if err != nil {
		logr.Warn("tracing disabled", zap.Error(err))
	}

	data, closeStores, err := openStores(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open data stores", zap.Error(err))
	}
	defer closeStores()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled && redisClient != nil)
	analytics, exporter := buildServices(cfg, data, cacheSvc, metricsSvc, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(internalmiddleware.Metrics(metricsSvc, "/health", "/metrics", cfg.APIPrefix+"/health"))
	r.Use(internalmiddleware.WithResponseMeta())

	registerRoutes(r, cfg, handler.NewTeacherAnalyticsHandler(analytics, exporter), handler.NewMetricsHandler(metricsSvc, analytics))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env), zap.Bool("fixture", cfg.Database.FixturePath != ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logr.Warn("tracer shutdown failed", zap.Error(err))
	}
}

// openStores connects to PostgreSQL, or loads a JSON snapshot when
// DB_FIXTURE_PATH is set.
func openStores(ctx context.Context, cfg *config.Config, logr *zap.Logger) (stores, func(), error) {
	if cfg.Database.FixturePath != "" {
		store, err := memstore.LoadFile(cfg.Database.FixturePath)
		if err != nil {
			return stores{}, nil, err
		}
		logr.Info("serving analytics from fixture snapshot", zap.String("path", cfg.Database.FixturePath))
		return stores{cohorts: store, activity: store, takeaways: store, faqs: store, mastery: store}, func() {}, nil
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return stores{}, nil, err
	}
	return postgresStores(db), func() { _ = db.Close() }, nil
}

func postgresStores(db *sqlx.DB) stores {
	return stores{
		cohorts:   repository.NewCohortRepository(db),
		activity:  repository.NewActivityRepository(db),
		takeaways: repository.NewTakeawayRepository(db),
		faqs:      repository.NewFAQRepository(db),
		mastery:   repository.NewMasteryRepository(db),
	}
}

func buildServices(cfg *config.Config, data stores, cacheSvc *service.CacheService, metricsSvc *service.MetricsService, logr *zap.Logger) (*service.TeacherAnalyticsService, *service.ExportService) {
	analytics := service.NewTeacherAnalyticsService(service.TeacherAnalyticsServiceParams{
		Cohorts:        service.NewCohortService(data.cohorts, metricsSvc, logr),
		Engagement:     service.NewEngagementService(data.activity, metricsSvc, logr),
		Completion:     service.NewCompletionService(data.activity, metricsSvc, logr),
		FAQs:           service.NewFAQService(data.faqs, metricsSvc, logr),
		Misconceptions: service.NewMisconceptionService(data.takeaways, data.faqs, cfg.Analytics.MisconceptionGrouping, metricsSvc, logr),
		Topics:         service.NewTopicService(data.mastery, data.takeaways, metricsSvc, logr),
		Validator:      service.NewWindowValidator(validator.New(), cfg.Analytics.DefaultFAQLimit),
		Cache:          cacheSvc,
		Metrics:        metricsSvc,
		Logger:         logr,
		Config: service.TeacherAnalyticsConfig{
			CacheTTL:               cfg.Analytics.CacheTTL,
			QueryTimeout:           cfg.Analytics.QueryTimeout,
			DefaultFAQLimit:        cfg.Analytics.DefaultFAQLimit,
			OverviewMisconceptions: cfg.Analytics.OverviewMisconceptions,
		},
	})

	return analytics, service.NewExportService(analytics, logr)
}

func registerRoutes(r *gin.Engine, cfg *config.Config, teachers *handler.TeacherAnalyticsHandler, system *handler.MetricsHandler) {
	r.GET("/health", system.Health)
	r.GET("/metrics", system.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.GET("/health", system.Health)
	api.GET("/analytics/system", system.System)

	teacher := api.Group("/teacher/:teacherId")
	teacher.GET("/overview", teachers.Overview)
	teacher.GET("/overview/export", teachers.ExportOverview)
	teacher.GET("/hourly", teachers.Hourly)
	teacher.GET("/faqs", teachers.FAQs)
	teacher.GET("/topic-performance", teachers.TopicPerformance)
	teacher.GET("/analytics-summary", teachers.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
