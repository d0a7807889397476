package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/sugun-2430327/project-backend/internal/application/service"
	"github.com/sugun-2430327/project-backend/internal/auth"
	"github.com/sugun-2430327/project-backend/internal/config"
	"github.com/sugun-2430327/project-backend/internal/infrastructure/persistence/repository"
	"github.com/sugun-2430327/project-backend/internal/infrastructure/persistence/sqlite"
	"github.com/sugun-2430327/project-backend/internal/infrastructure/storage"
	httpadapter "github.com/sugun-2430327/project-backend/internal/interfaces/http"
	"github.com/sugun-2430327/project-backend/internal/reports"
	"github.com/sugun-2430327/project-backend/pkg/database"
	"github.com/sugun-2430327/project-backend/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	// Local development secrets live in .env; absence is fine
	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting insurance backend",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port),
		zap.String("pipeline_mode", cfg.Enrollment.PipelineMode))

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	kvLogger := utils.NewKVLogger(logger)
	txManager := sqlite.NewDB(db, logger)

	userRepo := repository.NewUserRepository(db, logger)
	policyRepo := repository.NewPolicyRepository(db, logger)
	enrollmentRepo := repository.NewEnrollmentRepository(db, logger)
	claimRepo := repository.NewClaimRepository(db, logger)
	ticketRepo := repository.NewTicketRepository(db, logger)

	fileStorage := storage.NewLocalFileStorage(cfg.Storage.UploadDir, logger)
	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	exporter := reports.NewExporter(logger)

	services := httpadapter.Services{
		Users:       service.NewUserService(userRepo, fileStorage, tokenService, kvLogger),
		Policies:    service.NewPolicyService(policyRepo, kvLogger),
		Enrollments: service.NewEnrollmentService(enrollmentRepo, policyRepo, txManager, cfg.Enrollment.Mode(), kvLogger),
		Claims:      service.NewClaimService(claimRepo, enrollmentRepo, txManager, kvLogger),
		Support:     service.NewSupportService(ticketRepo, enrollmentRepo, claimRepo, kvLogger),
		Reports:     service.NewReportService(enrollmentRepo, claimRepo, exporter),
	}

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, services, tokenService, kvLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}

	logger.Info("Server exited")
}
