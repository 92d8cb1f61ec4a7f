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
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-health-api/api/swagger"
	"github.com/noah-isme/sma-health-api/internal/handler"
	"github.com/noah-isme/sma-health-api/internal/middleware"
	"github.com/noah-isme/sma-health-api/internal/models"
	"github.com/noah-isme/sma-health-api/internal/repository"
	"github.com/noah-isme/sma-health-api/internal/service"
	"github.com/noah-isme/sma-health-api/pkg/cache"
	"github.com/noah-isme/sma-health-api/pkg/config"
	"github.com/noah-isme/sma-health-api/pkg/database"
	"github.com/noah-isme/sma-health-api/pkg/jobs"
	"github.com/noah-isme/sma-health-api/pkg/logger"
	"github.com/noah-isme/sma-health-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/sma-health-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-health-api/pkg/middleware/requestid"
)

// @title School Health API
// @version 1.0.0
// @description Medical plans, parent consent, nurse execution and supply tracking for school health rooms.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	readiness := map[string]handler.ReadinessCheck{"database": db.PingContext}

	var cacheRepo *repository.CacheRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
			readiness["redis"] = cacheRepo.Ping
		}
	}
	var cacheStore service.CacheRepository
	if cacheRepo != nil {
		cacheStore = cacheRepo
	}
	cacheSvc := service.NewCacheService(cacheStore, metricsSvc, cfg.Alerts.CacheTTL, logr, cacheRepo != nil)

	var sender mailer.Sender = mailer.NopSender{}
	if cfg.Mail.Enabled {
		smtpSender, err := mailer.NewSMTPSender(cfg.Mail)
		if err != nil {
			logr.Sugar().Fatalw("invalid mail configuration", "error", err)
		}
		sender = smtpSender
	}

	app := buildApp(db, cfg, logr, metricsSvc, cacheSvc, sender)

	emailQueue := jobs.NewQueue("notification-email", app.email.Handle, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})
	app.email.SetQueue(emailQueue)
	emailQueue.Start(ctx)
	defer emailQueue.Stop()

	if cfg.Alerts.Enabled {
		runner := jobs.NewDailyRunner(logr)
		if err := runner.Register("inventory-alerts", cfg.Alerts.Schedule, app.alerts.RunScheduled); err != nil {
			logr.Sugar().Fatalw("failed to schedule inventory alerts", "error", err)
		}
		runner.Start(ctx)
		defer runner.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, readiness)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), app)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

type application struct {
	auth          *service.AuthService
	actors        *service.ActorService
	plans         *service.MedicalPlanService
	assignments   *service.AssignmentService
	consents      *service.ConsentService
	outcomes      *service.OutcomeService
	events        *service.MedicalEventService
	supplies      *service.SupplyService
	alerts        *service.AlertService
	notifications *service.NotificationService
	email         *service.EmailService
}

func buildApp(db *sqlx.DB, cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, cacheSvc *service.CacheService, sender mailer.Sender) *application {
	validate := validator.New()

	txManager := repository.NewTxManager(db)
	planRepo := repository.NewMedicalPlanRepository(db)
	consentRepo := repository.NewConsentRepository(db)
	executionRepo := repository.NewExecutionRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	eventRepo := repository.NewMedicalEventRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	parentRepo := repository.NewParentRepository(db)
	nurseRepo := repository.NewNurseRepository(db)

	tokens := service.NewConsentTokenSigner(cfg.ConsentToken.Secret, cfg.ConsentToken.TTL)
	emailSvc := service.NewEmailService(sender, tokens, cfg.ConsentToken.PublicBaseURL, metricsSvc, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, studentRepo, parentRepo, nurseRepo, userRepo, emailSvc, metricsSvc, logr)

	return &application{
		auth: service.NewAuthService(logr, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			Issuer:            cfg.JWT.Issuer,
			Audience:          cfg.JWT.Audience,
		}),
		actors: service.NewActorService(parentRepo, nurseRepo),
		plans: service.NewMedicalPlanService(service.MedicalPlanDeps{
			Tx:         txManager,
			Plans:      planRepo,
			Consents:   consentRepo,
			Students:   studentRepo,
			Executions: executionRepo,
			Parents:    parentRepo,
			Users:      userRepo,
			Mail:       emailSvc,
		}, validate, logr),
		assignments:   service.NewAssignmentService(txManager, planRepo, nurseRepo, consentRepo, studentRepo, executionRepo, validate, logr),
		consents:      service.NewConsentService(consentRepo, tokens, validate, metricsSvc, logr),
		outcomes:      service.NewOutcomeService(executionRepo, studentRepo, appointmentRepo, notificationSvc, validate, logr),
		events:        service.NewMedicalEventService(eventRepo, studentRepo, appointmentRepo, notificationSvc, validate, logr),
		supplies:      service.NewSupplyService(txManager, inventoryRepo, eventRepo, nurseRepo, cacheSvc, validate, logr),
		alerts:        service.NewAlertService(inventoryRepo, notificationSvc, cacheSvc, metricsSvc, logr, service.AlertConfig{ExpiryWindow: cfg.Alerts.ExpiryWindow, CacheTTL: cfg.Alerts.CacheTTL}),
		notifications: notificationSvc,
		email:         emailSvc,
	}
}

func registerRoutes(api *gin.RouterGroup, app *application) {
	planHandler := handler.NewMedicalPlanHandler(app.plans, app.assignments)
	consentHandler := handler.NewConsentHandler(app.consents, app.actors)
	outcomeHandler := handler.NewOutcomeHandler(app.outcomes, app.actors)
	eventHandler := handler.NewMedicalEventHandler(app.events, app.actors)
	inventoryHandler := handler.NewInventoryHandler(app.supplies, app.alerts, app.actors)
	notificationHandler := handler.NewNotificationHandler(app.notifications, app.actors)

	api.GET("/public/consents/respond", consentHandler.RespondPublic)

	secured := api.Group("")
	secured.Use(middleware.JWT(app.auth))

	plans := secured.Group("/medical-plans")
	plans.POST("", middleware.RequireRoles(models.RoleManager), planHandler.Create)
	plans.GET("/:id", middleware.RequireRoles(models.RoleManager, models.RoleNurse), planHandler.Get)
	plans.PUT("/:id", middleware.RequireRoles(models.RoleManager), planHandler.Update)
	plans.DELETE("/:id", middleware.RequireRoles(models.RoleManager), planHandler.Delete)
	plans.POST("/:id/assignments", middleware.RequireRoles(models.RoleManager), planHandler.Assign)

	consents := secured.Group("/consents", middleware.RequireRoles(models.RoleParent))
	consents.GET("/pending", consentHandler.Pending)
	consents.GET("/history", consentHandler.History)
	consents.POST("/:id/respond", consentHandler.Respond)

	nurse := middleware.RequireRoles(models.RoleNurse)
	secured.PUT("/health-checkups/:id", nurse, outcomeHandler.UpdateCheckup)
	secured.PUT("/vaccinations/:id", nurse, outcomeHandler.UpdateVaccination)
	secured.POST("/medical-events", nurse, eventHandler.Create)
	secured.POST("/supplies/usage", nurse, inventoryHandler.RecordUsage)

	inventory := secured.Group("/inventory", middleware.RequireRoles(models.RoleManager))
	inventory.GET("/alerts", inventoryHandler.Alerts)
	inventory.POST("/alerts/scan", inventoryHandler.ScanAlerts)

	notifications := secured.Group("/notifications", middleware.RequireRoles(models.RoleParent))
	notifications.GET("", notificationHandler.List)
	notifications.PATCH("/:id/read", notificationHandler.MarkRead)
}
