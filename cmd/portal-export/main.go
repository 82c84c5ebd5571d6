package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/sixsigma-portal/internal/config"
	"github.com/iwvelando/sixsigma-portal/internal/export"
	"github.com/iwvelando/sixsigma-portal/internal/logging"
	"github.com/iwvelando/sixsigma-portal/internal/portal"
	"github.com/iwvelando/sixsigma-portal/internal/store"
	"github.com/iwvelando/sixsigma-portal/pkg/constants"
	"github.com/iwvelando/sixsigma-portal/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	envFile := flag.String("env-file", constants.DefaultEnvFile, "optional dotenv file loaded before the configuration")
	collection := flag.String("collection", constants.CustomerCollection, "collection to export: customerData, employeeData, employeeCustomerData")
	outputFormat := flag.String("format", constants.ExportFormatXLSX, "output format: xlsx, csv, pretty")
	outPath := flag.String("out", "", "output file (default stdout)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	if _, err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": %q}\n", *configLocation, err.Error())
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := validation.ValidateExportFormat(*outputFormat); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}

	if err := run(conf, *collection, *outputFormat, *outPath, logger); err != nil {
		logger.Fatal("export failed",
			zap.String("op", "main"),
			zap.String("collection", *collection),
			zap.Error(err),
		)
	}
}

func run(conf *config.Configuration, collection, outputFormat, outPath string, logger *zap.Logger) (err error) {
	ctx := context.Background()
	backend, err := store.Open(ctx, conf.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		_ = backend.Close()
	}()

	var w io.Writer = os.Stdout
	if outPath != "" {
		file, createErr := os.Create(outPath)
		if createErr != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, createErr)
		}
		defer func() {
			if closeErr := file.Close(); err == nil && closeErr != nil {
				err = closeErr
			}
		}()
		w = file
	}

	exporter := export.NewExporter(portal.NewCollections(backend, store.WithLogger(logger)), logger)
	if err := exporter.Export(ctx, collection, outputFormat, w); err != nil {
		return err
	}

	logger.Info("export written",
		zap.String("op", "main"),
		zap.String("collection", collection),
		zap.String("format", outputFormat),
		zap.String("out", outPath),
	)
	return nil
}
