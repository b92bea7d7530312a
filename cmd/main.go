package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "chief_monitor/docs"
	"chief_monitor/internal/config"
	"chief_monitor/internal/handlers"
	"chief_monitor/internal/logger"
	"chief_monitor/internal/notify"
	"chief_monitor/internal/repository"
	"chief_monitor/internal/repository/db"
	"chief_monitor/internal/server"
	"chief_monitor/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title                       Chief Monitor API
// @version                     1.0
// @description                 Telemetry ingestion, job liveness checks and alerting for the chief scheduler.
// @BasePath                    /
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        x-api-key
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configPath := flag.String("config", "", "path to config file (default configs/config.yml)")
	flag.Parse()

	// bootstrap logger; the configured level is applied once config is read
	log := logger.Get(logger.InfoLevel)

	v := config.New(*configPath)
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log.SetLevel(cfg.Log.Level)
	config.Watch(v, log, func(next *config.Config) {
		// only the log level is hot-reloadable
		log.SetLevel(next.Log.Level)
	})

	conn, err := db.InitDB(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		log.Fatalw("failed to init database", "driver", cfg.DB.Driver, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn, repository.DialectFor(cfg.DB.Driver))
	services := service.NewService(repos, service.Options{
		RetentionDays: cfg.Retention.Days,
		RecoveryTTL:   cfg.RecoveryTTL(),
		AuthSecret:    cfg.Auth.Secret,
		TokenTTL:      cfg.Auth.TokenTTL,
		Sender:        emailSender(cfg.Email, log),
		Logger:        log,
	})
	seedAdmin(services, cfg.Auth, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services.StartSweeps(ctx, cfg.EvaluatorInterval(), cfg.RetentionInterval())

	apiHandler := handlers.NewHandler(services, log, cfg.APIKey)
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Addr(), server.WithCORS(cfg.CORS.AllowedOrigins, apiHandler.InitRoutes()), log)
	log.Infow("monitor_started",
		"addr", cfg.Addr(),
		"db_driver", cfg.DB.Driver,
		"ingest_auth", cfg.APIKey != "",
		"operator_auth", cfg.Auth.Enabled(),
	)

	// graceful shutdown
	waitForShutdown(cancel, srv, services, log)
}

func emailSender(cfg config.EmailConfig, log *logger.Logger) notify.EmailSender {
	sg := notify.NewSendGridSender(notify.SendGridOptions{
		APIKey:    cfg.SendGridAPIKey,
		Host:      cfg.SendGridHost,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	})
	if !sg.Configured() {
		log.Infow("email_disabled", "reason", "email.sendgrid_api_key and email.from_email are required")
		return notify.Disabled{}
	}
	return sg
}

func seedAdmin(services *service.Service, cfg config.AuthConfig, log *logger.Logger) {
	if !cfg.Enabled() || cfg.AdminUsername == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	created, err := services.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatalw("failed to seed operator account", "username", cfg.AdminUsername, "err", err)
	}
	if created {
		log.Infow("operator_account_created", "username", cfg.AdminUsername)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, addr string, handler http.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(addr, handler); err != nil {
			log.Fatalw("error starting server", "addr", addr, "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, services *service.Service, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop sweeps
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	// sweeps stopped and queued alert emails recorded before the database closes
	services.Wait()
	_ = log.Sync()
}
