package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/worktrack-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/renderer"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/retry"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/repository/postgresql"
	activityService "github.com/cmlabs-hris/worktrack-backend-go/internal/service/activity"
	clientService "github.com/cmlabs-hris/worktrack-backend-go/internal/service/client"
	employeeService "github.com/cmlabs-hris/worktrack-backend-go/internal/service/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/service/file"
	projectService "github.com/cmlabs-hris/worktrack-backend-go/internal/service/project"
	reportService "github.com/cmlabs-hris/worktrack-backend-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.App.LogLevel),
	})))

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	loc := cfg.Location()
	transactor := postgresql.NewTransactor(db)

	employeeRepo := postgresql.NewEmployeeRepository(db)
	activityRepo := postgresql.NewActivityRepository(db)
	screenshotRepo := postgresql.NewScreenshotRepository(db)
	clientRepo := postgresql.NewClientRepository(db)
	projectRepo := postgresql.NewProjectRepository(db)
	definitionRepo := postgresql.NewDefinitionRepository(db)
	activityReader := postgresql.NewActivityReader(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	case "minio":
		fileStorage, err = storage.NewMinIOStorage(
			context.Background(),
			cfg.Storage.MinIO.Endpoint,
			cfg.Storage.MinIO.AccessKey,
			cfg.Storage.MinIO.SecretKey,
			cfg.Storage.MinIO.Bucket,
			cfg.Storage.MinIO.UseSSL,
		)
		if err != nil {
			log.Fatal("Failed to initialize minio storage:", err)
		}
	default:
		log.Fatal("Unsupported storage types: ", cfg.Storage.Type)
	}

	fileService := file.NewFileService(fileStorage)
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}
	chromeRenderer := renderer.NewChromeRenderer(cfg.Renderer)

	dayBuckets := employeeService.NewDayBucketService(transactor, employeeRepo)
	activitySvc := activityService.NewActivityService(
		transactor,
		activityRepo,
		screenshotRepo,
		dayBuckets,
		fileService,
		loc,
	)
	reportSvc := reportService.NewReportService(
		activityReader,
		definitionRepo,
		employeeRepo,
		projectRepo,
		clientRepo,
		fileStorage,
		loc,
	)
	deliverySvc := reportService.NewDeliveryService(reportSvc, chromeRenderer, emailService, reportService.DeliveryConfig{
		RendererBaseURL:  cfg.Renderer.BaseURL,
		DefaultRecipient: cfg.SMTP.DefaultRecipient,
		MaxParallel:      cfg.Renderer.MaxConcurrent,
		Retry:            retry.Default,
	})
	clientSvc := clientService.NewClientService(
		transactor,
		clientRepo,
		projectRepo,
		activityRepo,
		screenshotRepo,
		employeeRepo,
		reportSvc,
	)
	projectSvc := projectService.NewProjectService(
		transactor,
		projectRepo,
		clientRepo,
		employeeRepo,
		activityRepo,
		screenshotRepo,
		reportSvc,
	)
	employeeSvc := employeeService.NewEmployeeService(
		transactor,
		employeeRepo,
		activityRepo,
		screenshotRepo,
		clientRepo,
		projectRepo,
	)

	router := appHTTP.NewRouter(
		cfg.App,
		JWTService,
		appHTTP.NewActivityHandler(activitySvc),
		appHTTP.NewClientHandler(clientSvc),
		appHTTP.NewProjectHandler(projectSvc),
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewReportHandler(reportSvc),
	)
	if cfg.Storage.Type == "local" {
		router.Handle("/storage/*", http.StripPrefix("/storage/", http.FileServer(http.Dir(cfg.Storage.BasePath))))
	}

	scheduler := cron.NewScheduler()
	cron.NewReportJobs(deliverySvc, cfg.Scheduler.Interval).RegisterJobs(scheduler)
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
