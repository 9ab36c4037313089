package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tutorhub/class-ledger-api/api/swagger"
	"github.com/tutorhub/class-ledger-api/internal/handler"
	"github.com/tutorhub/class-ledger-api/internal/middleware"
	"github.com/tutorhub/class-ledger-api/internal/models"
	"github.com/tutorhub/class-ledger-api/internal/repository"
	"github.com/tutorhub/class-ledger-api/internal/service"
	"github.com/tutorhub/class-ledger-api/pkg/cache"
	"github.com/tutorhub/class-ledger-api/pkg/config"
	"github.com/tutorhub/class-ledger-api/pkg/database"
	"github.com/tutorhub/class-ledger-api/pkg/export"
	"github.com/tutorhub/class-ledger-api/pkg/logger"
	corsmiddleware "github.com/tutorhub/class-ledger-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tutorhub/class-ledger-api/pkg/middleware/requestid"
)

// @title Class Ledger API
// @version 1.0.0
// @description Recurring class scheduling, attendance calls and the attendance-driven credit ledger
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Cache is a read-side optimisation; the ledger works without it.
		logr.Sugar().Warnw("redis unavailable, balance caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	courseRepo := repository.NewCourseRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	teachingRepo := repository.NewTeachingRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authService := service.NewAuthService(userRepo, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
	})
	courseService := service.NewCourseService(courseRepo, validate, logr)
	creditService := service.NewCreditService(
		creditRepo, courseRepo, cacheRepo, export.NewStatementExporter(),
		validate, logr, service.CreditServiceConfig{CacheTTL: cfg.Ledger.CacheTTL},
	)
	scheduleService := service.NewScheduleService(
		sessionRepo, teachingRepo, rosterRepo, courseRepo, db,
		validate, logr, metrics, service.ScheduleServiceConfig{MaxWindowDays: cfg.Scheduler.MaxWindowDays},
	)
	attendanceService := service.NewAttendanceService(
		sessionRepo, rosterRepo, creditRepo, db, creditService,
		validate, logr, metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	creditService.StartInvalidationQueue(ctx)
	defer creditService.StopInvalidationQueue()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	creditHandler := handler.NewCreditHandler(creditService)
	courseHandler := handler.NewCourseHandler(courseService)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authService))

	sessions := api.Group("/sessions")
	sessions.POST("", middleware.RequireRole(models.RoleTeacher), scheduleHandler.Create)
	sessions.GET("/mine", middleware.RequireRole(models.RoleTeacher), scheduleHandler.ListMine)
	sessions.POST("/:id/attendance", middleware.RequireRole(models.RoleTeacher), attendanceHandler.Take)
	sessions.PUT("/:id/attendance", middleware.RequireRole(models.RoleTeacher), attendanceHandler.Amend)

	students := api.Group("/students")
	students.GET("/:id/sessions", middleware.RequireRoleOrSelf(models.RoleTeacher, "id"), scheduleHandler.ListForStudent)
	students.GET("/:id/credits", middleware.RequireRoleOrSelf(models.RoleTeacher, "id"), creditHandler.Balances)
	students.POST("/:id/credits", middleware.RequireRole(models.RolePrincipal), creditHandler.TopUp)
	students.GET("/:id/credits/ledger", middleware.RequireRoleOrSelf(models.RoleTeacher, "id"), creditHandler.Ledger)
	if cfg.Ledger.ExportEnabled {
		students.GET("/:id/credits/statement", middleware.RequireRoleOrSelf(models.RoleTeacher, "id"), creditHandler.Statement)
	}

	courses := api.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)
	courses.POST("", middleware.RequireRole(models.RolePrincipal), courseHandler.Create)
	courses.PUT("/:id", middleware.RequireRole(models.RolePrincipal), courseHandler.Update)
	courses.DELETE("/:id", middleware.RequireRole(models.RolePrincipal), courseHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
