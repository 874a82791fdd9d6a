package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/egresos/internal/checksum"
	"github.com/vvka-141/egresos/internal/config"
	"github.com/vvka-141/egresos/internal/csvload"
	"github.com/vvka-141/egresos/internal/db"
	"github.com/vvka-141/egresos/internal/files/filesystem"
	"github.com/vvka-141/egresos/internal/files/scanner"
	"github.com/vvka-141/egresos/internal/logging"
	"github.com/vvka-141/egresos/internal/metadata"
	"github.com/vvka-141/egresos/internal/metrics"
	"github.com/vvka-141/egresos/internal/preprocessor"
	"github.com/vvka-141/egresos/internal/report"
	"github.com/vvka-141/egresos/internal/services"
	"github.com/vvka-141/egresos/internal/store"
	"github.com/vvka-141/egresos/internal/tui"
	"github.com/vvka-141/egresos/pkg/egresos"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configFile string
	baseDir    string
	envFile    string
	dataDir    string
	database   string
	table      string
	retries    int
	metrics    string
	verbose    bool
}

func (f *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "YAML configuration file (default: egresos.yaml in the base directory)")
	pf.StringVar(&f.baseDir, "base-dir", "", "Directory relative paths resolve against (default: executable directory)")
	pf.StringVar(&f.envFile, "env-file", "", "Dotenv file loaded before reading EGRESOS_* variables (default: .env)")
	pf.StringVar(&f.dataDir, "data-dir", "", "Directory holding the yearly extracts")
	pf.StringVar(&f.database, "database", "", "SQLite file or postgres:// URL")
	pf.StringVar(&f.table, "table", "", "Destination table")
	pf.IntVar(&f.retries, "connect-retries", 0, "Retries for transient connection failures")
	pf.StringVar(&f.metrics, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Enable verbose output")
}

// resolveConfig loads configuration and applies flags the user set explicitly.
func resolveConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: flags.configFile,
		BaseDir:    flags.baseDir,
		EnvFile:    flags.envFile,
	})
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("data-dir") {
		cfg.DataDir = flags.dataDir
	}
	if changed("database") {
		cfg.Database = flags.database
	}
	if changed("table") {
		cfg.Table = flags.table
	}
	if changed("connect-retries") {
		cfg.ConnectRetries = flags.retries
	}
	if changed("metrics-file") {
		cfg.MetricsFile = flags.metrics
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is an opened store plus the components built from one configuration.
type session struct {
	cfg      *config.Config
	logger   egresos.Logger
	store    *store.Store
	renderer *report.Renderer
	out      io.Writer
}

// openSession resolves configuration and opens the store. With readOnly set,
// a SQLite file that does not exist yet is left uncreated and the returned
// session is nil.
func openSession(ctx context.Context, cmd *cobra.Command, flags *globalFlags, readOnly bool) (*session, error) {
	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), flags.verbose)

	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return nil, err
	}
	logger.Verbose("Base directory: %s", cfg.BaseDir)
	logger.Verbose("Data directory: %s", cfg.DataDir)
	logger.Verbose("Database: %s", db.Redact(cfg.Database))

	if readOnly && !config.IsURL(cfg.Database) {
		if _, err := os.Stat(cfg.Database); errors.Is(err, fs.ErrNotExist) {
			logger.Info("Nothing loaded yet: database %s does not exist yet", cfg.Database)
			return nil, nil
		}
	}

	st, err := store.Open(ctx, cfg.Database,
		store.Options{YearColumn: cfg.YearColumn, InsertBatchSize: cfg.InsertBatchSize},
		db.Options{ConnectTimeout: cfg.ConnectTimeout, Retries: cfg.ConnectRetries},
		logger)
	if err != nil {
		logger.Error("Could not open the database: %v", err)
		return nil, err
	}

	out := cmd.OutOrStdout()
	return &session{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		renderer: report.NewRenderer(out, tui.DetectMode(out)),
		out:      out,
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("Failed to close database: %v", err)
	}
}

func (s *session) validator() *report.Validator {
	return report.NewValidator(s.store, s.renderer, s.logger)
}

func (s *session) ingestionService(recorder *metrics.Recorder) (*services.IngestionService, error) {
	matcher, err := metadata.NewMatcher(s.cfg.FilePattern)
	if err != nil {
		return nil, err
	}
	fsProvider := filesystem.NewOSFileSystem()

	loader := csvload.NewLoader(fsProvider, checksum.New(), csvload.Options{
		Encoding:  s.cfg.Encoding,
		Delimiter: s.cfg.DelimiterRune(),
	}, s.logger)

	pipeline := preprocessor.NewPipeline(preprocessor.Rules{
		Threshold:      s.cfg.Threshold,
		Sentinel:       s.cfg.Sentinel,
		ColumnMapping:  s.cfg.ColumnMapping,
		IntegerColumns: s.cfg.IntegerColumns,
	}, s.logger)

	svc := services.NewIngestionService(
		scanner.NewScannerWithFS(matcher, fsProvider),
		loader,
		pipeline,
		s.store,
		s.validator(),
		s.logger,
	)
	return svc.WithObserver(recorder), nil
}

func (s *session) ingestConfig() egresos.IngestConfig {
	return egresos.IngestConfig{
		DataDir: s.cfg.DataDir,
		Table:   s.cfg.Table,
		MinYear: s.cfg.MinYear,
		MaxYear: s.cfg.MaxYear,
	}
}

// writeMetrics exports the recorder when a metrics file is configured.
// Export failures are logged and never fail the run.
func (s *session) writeMetrics(recorder *metrics.Recorder) {
	if s.cfg.MetricsFile == "" {
		return
	}
	if err := recorder.WriteTextfile(s.cfg.MetricsFile); err != nil {
		s.logger.Warn("Failed to write metrics to %s: %v", s.cfg.MetricsFile, err)
		return
	}
	s.logger.Verbose("Metrics written to %s", s.cfg.MetricsFile)
}

func summarize(logger egresos.Logger, summary egresos.RunSummary) {
	logger.Verbose("Run %s: %d loaded, %d already loaded, %d failed, %d ignored in %s",
		summary.RunID,
		summary.Count(egresos.OutcomeLoaded),
		summary.Count(egresos.OutcomeAlreadyLoaded),
		summary.Count(egresos.OutcomeLoadFailed)+summary.Count(egresos.OutcomePersistFailed),
		len(summary.Ignored),
		summary.Elapsed.Round(time.Millisecond),
	)
}
