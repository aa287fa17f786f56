package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/unisched/schedule-builder-api/api/swagger"
	"github.com/unisched/schedule-builder-api/internal/handler"
	"github.com/unisched/schedule-builder-api/internal/middleware"
	"github.com/unisched/schedule-builder-api/internal/repository"
	"github.com/unisched/schedule-builder-api/internal/service"
	"github.com/unisched/schedule-builder-api/pkg/cache"
	"github.com/unisched/schedule-builder-api/pkg/config"
	"github.com/unisched/schedule-builder-api/pkg/database"
	"github.com/unisched/schedule-builder-api/pkg/jobs"
	"github.com/unisched/schedule-builder-api/pkg/logger"
	corsmiddleware "github.com/unisched/schedule-builder-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unisched/schedule-builder-api/pkg/middleware/requestid"
)

// @title Schedule Builder API
// @version 1.0.0
// @description Academic lecture scheduling: generation, conflict auditing, optimization and export
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
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis connection failed", "error", err)
	}
	defer redisClient.Close()
	store := cache.NewStore(redisClient)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	sessionRepo := repository.NewSessionRepository(db)
	lectureRepo := repository.NewLectureRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	userRepo := repository.NewUserRepository(db)

	schedulerSvc := service.NewSchedulerService(
		sessionRepo, lectureRepo, assignmentRepo, classroomRepo, timeSlotRepo,
		db, store, metricsSvc, nil,
		service.SchedulerConfig{
			MinRoomCapacity:     cfg.Scheduler.MinRoomCapacity,
			OptimizerIterations: cfg.Scheduler.OptimizerIterations,
			ReportCacheTTL:      cfg.Scheduler.ReportCacheTTL,
		},
		validate, logr,
	)

	optimizeQueue := jobs.NewQueue("optimize", schedulerSvc.HandleOptimizeJob, jobs.QueueConfig{
		Workers:    cfg.Scheduler.WorkerConcurrency,
		MaxRetries: cfg.Scheduler.WorkerRetries,
		Logger:     logr,
	})
	optimizeQueue.Start(context.Background())
	defer optimizeQueue.Stop()
	schedulerSvc.SetQueue(optimizeQueue)

	catalogSvc := service.NewCatalogService(classroomRepo, timeSlotRepo, validate, logr)
	exportSvc := service.NewExportService(schedulerSvc, lectureRepo, catalogSvc, cfg.Export.Institution, logr)
	authSvc := service.NewAuthService(userRepo, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	}, validate, logr)

	schedulerHandler := handler.NewSchedulerHandler(schedulerSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	api.GET("/classrooms", catalogHandler.ListClassrooms)
	api.GET("/classrooms/utilization", catalogHandler.ClassroomUtilization)
	api.GET("/time-slots", catalogHandler.ListTimeSlots)
	api.GET("/time-slots/utilization", catalogHandler.TimeSlotUtilization)
	api.GET("/schedules", schedulerHandler.ListSessions)
	api.GET("/schedules/:id", schedulerHandler.GetSchedule)
	api.GET("/schedules/:id/conflicts", schedulerHandler.Conflicts)
	api.GET("/schedules/:id/score", schedulerHandler.Score)
	api.GET("/schedules/:id/export/csv", exportHandler.TimetableCSV)
	api.GET("/schedules/:id/export/pdf", exportHandler.TimetablePDF)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.POST("/classrooms", catalogHandler.CreateClassroom)
	protected.PATCH("/classrooms/:id", catalogHandler.UpdateClassroom)
	protected.DELETE("/classrooms/:id", catalogHandler.DeleteClassroom)
	protected.POST("/time-slots", catalogHandler.CreateTimeSlot)
	protected.POST("/time-slots/bootstrap", catalogHandler.BootstrapTimeSlots)
	protected.PUT("/time-slots/:id/status", catalogHandler.UpdateTimeSlotStatus)
	protected.DELETE("/time-slots/:id", catalogHandler.DeleteTimeSlot)
	protected.POST("/schedules", schedulerHandler.Generate)
	protected.POST("/schedules/:id/optimize", schedulerHandler.Optimize)
	protected.DELETE("/schedules/:id", schedulerHandler.DeleteSession)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
