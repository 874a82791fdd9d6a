// Package config resolves the settings of an ingestion run.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults
//  2. YAML file (--config, else egresos.yaml in the base directory)
//  3. Environment (EGRESOS_*), after loading .env
//  4. Command-line flags, applied by the caller before Finalize
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/egresos/pkg/egresos"
)

// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// EnvPrefix prefixes every environment override, e.g. EGRESOS_TABLE.
const EnvPrefix = "EGRESOS"

// Config holds the resolved settings.
type Config struct {
	BaseDir         string            `yaml:"-" envconfig:"BASE_DIR"`
	DataDir         string            `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	Database        string            `yaml:"database" envconfig:"DATABASE" validate:"required"`
	Table           string            `yaml:"table" envconfig:"TABLE" validate:"required,sqlident"`
	Threshold       float64           `yaml:"threshold" envconfig:"THRESHOLD" validate:"gte=0,lte=1"`
	Sentinel        string            `yaml:"sentinel" envconfig:"SENTINEL" validate:"required"`
	FilePattern     string            `yaml:"file_pattern" envconfig:"FILE_PATTERN" validate:"required,regexp"`
	Encoding        string            `yaml:"encoding" envconfig:"ENCODING" validate:"oneof=latin1 utf8"`
	Delimiter       string            `yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
	YearColumn      string            `yaml:"year_column" envconfig:"YEAR_COLUMN" validate:"required,sqlident"`
	ColumnMapping   map[string]string `yaml:"column_mapping" ignored:"true" validate:"dive,keys,required,endkeys,required"`
	IntegerColumns  []string          `yaml:"integer_columns" envconfig:"INTEGER_COLUMNS" validate:"dive,required"`
	MinYear         int               `yaml:"min_year" envconfig:"MIN_YEAR" validate:"gte=0"`
	MaxYear         int               `yaml:"max_year" envconfig:"MAX_YEAR" validate:"gte=0"`
	ConnectRetries  int               `yaml:"connect_retries" envconfig:"CONNECT_RETRIES" validate:"gte=0,lte=10"`
	ConnectTimeout  time.Duration     `yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT" validate:"gt=0"`
	InsertBatchSize int               `yaml:"insert_batch_size" envconfig:"INSERT_BATCH_SIZE" validate:"gte=1"`
	MetricsFile     string            `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// LoadOptions locate the configuration sources.
type LoadOptions struct {
	ConfigFile string // Explicit YAML file; must exist when set
	BaseDir    string // Overrides EGRESOS_BASE_DIR and the executable directory
	EnvFile    string // Dotenv file, ".env" when empty; a missing file is ignored
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		DataDir:         egresos.DefaultDataDir,
		Database:        egresos.DefaultDatabaseFile,
		Table:           egresos.DefaultTableName,
		Threshold:       egresos.DefaultThreshold,
		Sentinel:        egresos.DefaultSentinel,
		FilePattern:     egresos.DefaultFilePattern,
		Encoding:        egresos.DefaultEncoding,
		Delimiter:       egresos.DefaultDelimiter,
		YearColumn:      egresos.DefaultYearColumn,
		ColumnMapping:   egresos.DefaultColumnMapping(),
		IntegerColumns:  egresos.DefaultIntegerColumns(),
		ConnectTimeout:  egresos.DefaultConnectTimeout,
		InsertBatchSize: egresos.DefaultInsertBatchSize,
	}
}

// Load applies defaults, the YAML file and the environment. Paths are not
// resolved yet; apply flag overrides and then call Finalize.
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: load %s: %v", egresos.ErrInvalidConfig, envFile, err)
	}

	cfg := Defaults()

	baseDir, err := resolveBaseDir(opts.BaseDir)
	if err != nil {
		return nil, err
	}
	cfg.BaseDir = baseDir

	configFile := opts.ConfigFile
	if configFile == "" {
		candidate := filepath.Join(baseDir, egresos.DefaultConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
		}
	}
	if configFile != "" {
		if err := loadFile(configFile, &cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", egresos.ErrInvalidConfig, err)
	}
	if opts.BaseDir != "" {
		cfg.BaseDir = opts.BaseDir
	}
	return &cfg, nil
}

func resolveBaseDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvPrefix + "_BASE_DIR"); env != "" {
		return env, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: locate executable: %v", egresos.ErrInvalidConfig, err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}
	// A mapping in the file replaces the default one instead of merging into it.
	var probe struct {
		ColumnMapping map[string]string `yaml:"column_mapping"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: parse %s: %v", egresos.ErrInvalidConfig, path, err)
	}
	if probe.ColumnMapping != nil {
		cfg.ColumnMapping = nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: parse %s: %v", egresos.ErrInvalidConfig, path, err)
	}
	return nil
}

// Finalize resolves relative paths against BaseDir and validates the result.
func (c *Config) Finalize() error {
	c.resolvePaths()
	return c.Validate()
}

func (c *Config) resolvePaths() {
	if c.BaseDir == "" {
		return
	}
	if !filepath.IsAbs(c.DataDir) {
		c.DataDir = filepath.Join(c.BaseDir, c.DataDir)
	}
	if !IsURL(c.Database) && !filepath.IsAbs(c.Database) {
		c.Database = filepath.Join(c.BaseDir, c.Database)
	}
	if c.MetricsFile != "" && !filepath.IsAbs(c.MetricsFile) {
		c.MetricsFile = filepath.Join(c.BaseDir, c.MetricsFile)
	}
}

// IsURL reports whether a database target is a connection URL rather than a file path.
func IsURL(target string) bool {
	return strings.Contains(target, "://")
}

// DelimiterRune returns the field separator as a rune.
func (c *Config) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ';'
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return identifierPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if err := newValidator().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", egresos.ErrInvalidConfig, err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, describe(fe))
		}
	}
	if c.MinYear > 0 && c.MaxYear > 0 && c.MaxYear < c.MinYear {
		errs = append(errs, fmt.Errorf("max_year (%d) is before min_year (%d)", c.MaxYear, c.MinYear))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", egresos.ErrInvalidConfig, errors.Join(errs...))
}

func describe(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "sqlident":
		return fmt.Errorf("%s %q is not a valid SQL identifier", field, fe.Value())
	case "regexp":
		return fmt.Errorf("%s %q is not a valid regular expression", field, fe.Value())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s fails %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
}
