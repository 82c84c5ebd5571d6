package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iwvelando/sixsigma-portal/pkg/constants"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler writes XLSX snapshots of collections on a cron schedule.
type Scheduler struct {
	exporter    *Exporter
	cron        *cron.Cron
	directory   string
	collections []string
	now         func() time.Time
	logger      *zap.Logger
}

// NewScheduler validates spec (standard five-field cron syntax or a
// descriptor such as @daily) and prepares a scheduler. Call Start to run it.
func NewScheduler(exporter *Exporter, spec, directory string, collections []string, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(collections) == 0 {
		collections = constants.Collections
	}

	s := &Scheduler{
		exporter:    exporter,
		cron:        cron.New(),
		directory:   directory,
		collections: collections,
		now:         time.Now,
		logger:      logger,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid export schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("export scheduler started",
		zap.String("op", "export.Scheduler.Start"),
		zap.String("directory", s.directory),
		zap.Strings("collections", s.collections),
	)
}

// Stop stops the schedule and waits for a running snapshot to finish or ctx
// to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run() {
	paths, err := s.Snapshot(context.Background())
	if err != nil {
		s.logger.Error("scheduled export failed",
			zap.String("op", "export.Scheduler.run"),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("scheduled export written",
		zap.String("op", "export.Scheduler.run"),
		zap.Strings("files", paths),
	)
}

// Snapshot writes one workbook per collection into the directory, named
// <collection>-<UTC timestamp>.xlsx, and returns the file paths.
func (s *Scheduler) Snapshot(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(s.directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", s.directory, err)
	}

	stamp := s.now().UTC().Format("20060102-150405")
	paths := make([]string, 0, len(s.collections))
	for _, collection := range s.collections {
		path := filepath.Join(s.directory, fmt.Sprintf("%s-%s.xlsx", collection, stamp))
		if err := s.writeFile(ctx, collection, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *Scheduler) writeFile(ctx context.Context, collection, path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()
	return s.exporter.Export(ctx, collection, constants.ExportFormatXLSX, file)
}
