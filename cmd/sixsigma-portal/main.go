package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/sixsigma-portal/internal/config"
	"github.com/iwvelando/sixsigma-portal/internal/export"
	"github.com/iwvelando/sixsigma-portal/internal/logging"
	"github.com/iwvelando/sixsigma-portal/internal/notify"
	"github.com/iwvelando/sixsigma-portal/internal/portal"
	"github.com/iwvelando/sixsigma-portal/internal/server"
	"github.com/iwvelando/sixsigma-portal/internal/store"
	"github.com/iwvelando/sixsigma-portal/pkg/constants"
	"github.com/iwvelando/sixsigma-portal/pkg/validation"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	envFile := flag.String("env-file", constants.DefaultEnvFile, "optional dotenv file loaded before the configuration")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	printConfig := flag.Bool("print-config", false, "print the effective configuration and exit")
	flag.Parse()

	if _, err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load env file\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": %q}\n", *configLocation, err.Error())
		os.Exit(1)
	}

	if *printConfig {
		data, err := conf.YAML()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print(string(data))
		return
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(conf, logger); err != nil {
		logger.Fatal("portal stopped with error",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func run(conf *config.Configuration, logger *zap.Logger) error {
	warnings, err := conf.Validate()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	if err != nil {
		return err
	}

	ctx := context.Background()
	backend, err := store.Open(ctx, conf.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close storage", zap.String("op", "main"), zap.Error(err))
		}
	}()

	collections := portal.NewCollections(backend, store.WithLogger(logger))
	validator := validation.New()

	var notifier portal.Notifier
	var mailer *notify.Mailer
	if conf.Notify.Enabled {
		mailer = notify.New(conf.Notify, logger)
		notifier = mailer
		logger.Info("application notifications enabled",
			zap.String("op", "main"),
			zap.String("to", conf.Notify.To),
		)
	}

	sessions, err := server.NewSessions(conf.Session)
	if err != nil {
		return err
	}

	handler, err := server.NewHandler(server.Options{
		Customers:   portal.NewCustomerService(collections, validator, notifier, logger),
		Employees:   portal.NewEmployeeService(collections, validator, notifier, logger),
		Sessions:    sessions,
		Metrics:     server.NewMetrics(),
		MaxFormSize: conf.Server.FormSizeBytes(),
		Version:     version,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	var scheduler *export.Scheduler
	if conf.Export.Schedule != "" {
		scheduler, err = export.NewScheduler(export.NewExporter(collections, logger),
			conf.Export.Schedule, conf.Export.Directory, conf.Export.Collections, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	httpServer := &http.Server{
		Addr:         conf.Server.Address,
		Handler:      handler,
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
		IdleTimeout:  conf.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("portal listening",
			zap.String("op", "main"),
			zap.String("address", conf.Server.Address),
			zap.String("version", version),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-quit:
		logger.Info("shutting down",
			zap.String("op", "main"),
			zap.String("signal", sig.String()),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", zap.String("op", "main"), zap.Error(err))
	}
	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			logger.Warn("export scheduler did not stop cleanly", zap.String("op", "main"), zap.Error(err))
		}
	}
	if mailer != nil {
		if err := mailer.Close(shutdownCtx); err != nil {
			logger.Warn("pending notifications dropped", zap.String("op", "main"), zap.Error(err))
		}
	}

	logger.Info("portal exited", zap.String("op", "main"))
	return nil
}
