// Command api serves the church admin REST API.
//
//go:generate swag init -g cmd/api/main.go -d ../../ -o ../../docs
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"churchadmin/config"
	_ "churchadmin/docs"
	"churchadmin/internal/adapters/auth"
	"churchadmin/internal/adapters/email"
	"churchadmin/internal/adapters/youtube"
	delivery "churchadmin/internal/delivery/http"
	"churchadmin/internal/delivery/http/controllers"
	"churchadmin/internal/delivery/http/middleware"
	"churchadmin/internal/repository/postgres"
	"churchadmin/internal/services"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
)

// @title Church Admin API
// @version 1.0
// @description Members, comcell groups, ministry teams, events and attendance.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

// run wires the application and serves until a signal arrives or the
// listener fails. Deferred cleanup runs on both paths.
func run(cfg *config.Config, logger *slog.Logger) error {
	teamKeys, err := config.LoadTeamKeys(cfg.TeamKeysFile)
	if err != nil {
		return fmt.Errorf("load team keys: %w", err)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(pingCtx)
	cancelPing()
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	groupRepo := postgres.NewGroupRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	eventStore := postgres.NewEventStore(db)
	attendanceRepo := postgres.NewAttendanceRepository(sqlx.NewDb(db, "postgres"))
	videoRepo := postgres.NewVideoRepository(db)

	// Adapters
	jwt := auth.NewJWT(cfg.Auth.JWTSecret)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.AWSRegion,
			AccessKeyID:        cfg.Mail.AWSAccessKeyID,
			SecretAccessKey:    cfg.Mail.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.SESInsecureSkipTLS,
		},
	}, logger)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	metadata := youtube.NewOEmbedFetcher(&http.Client{Timeout: 5 * time.Second}, youtube.DefaultEndpoint)

	// Services
	timeout := cfg.RequestTimeout
	authService := services.NewAuthService(userRepo, roleRepo, hasher, jwt, jwt, emailService, services.AuthConfig{
		TokenExpiry:      cfg.Auth.JWTExpiry,
		ResetTokenExpiry: cfg.Auth.ResetTokenExpiry,
		ResetPasswordURL: cfg.Auth.ResetPasswordURL,
	}, logger, timeout)
	userService := services.NewUserService(userRepo, roleRepo, timeout)
	groupService := services.NewGroupService(groupRepo, userRepo, timeout)
	teamService := services.NewTeamService(teamRepo, userRepo, timeout)
	eventService := services.NewEventService(eventStore, eventRepo, groupRepo, teamKeys, logger, timeout)
	attendanceService := services.NewAttendanceService(attendanceRepo, groupRepo, timeout)
	videoService := services.NewVideoService(videoRepo, metadata, logger, timeout)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "churchadmin"),
	)
	metrics := middleware.NewMetrics(reg)

	router := delivery.NewRouter(delivery.Controllers{
		Auth:      controllers.NewAuthController(logger, authService),
		Users:     controllers.NewUserController(logger, userService),
		Comcell:   controllers.NewComcellController(logger, groupService),
		Teams:     controllers.NewTeamController(logger, teamService),
		CoreEvent: controllers.NewCoreEventController(logger, eventService),
		Events:    controllers.NewEventController(logger, eventService, attendanceService),
		Videos:    controllers.NewVideoController(logger, videoService),
	}, jwt, logger, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           delivery.WithMiddleware(router, logger, metrics, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("starting server", "addr", srv.Addr, "env", cfg.Environment)
	return serve(srv, sigCh, logger)
}
