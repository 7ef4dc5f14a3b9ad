package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/uiscript/database"
	"github.com/hairizuanbinnoorazman/uiscript/interpreter"
	"github.com/hairizuanbinnoorazman/uiscript/storage"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Log         LogConfig
	Database    DatabaseConfig
	Storage     StorageConfig
	Browser     BrowserConfig
	Runner      RunnerConfig
	Interpreter InterpreterConfig
	Server      ServerConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// DatabaseConfig holds the run history database configuration.
type DatabaseConfig struct {
	Driver          string // "sqlite" or "mysql"
	Path            string // For sqlite
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// StorageConfig holds blob storage configuration for report artifacts.
type StorageConfig struct {
	Type            string // "local" or "s3"
	BaseDir         string // For local: "./reports"
	S3Bucket        string
	S3Region        string
	S3Prefix        string
	S3Endpoint      string
	S3PresignExpiry time.Duration
}

// BrowserConfig selects and configures the browser driver.
type BrowserConfig struct {
	Driver     string // "rod" or "static"
	ControlURL string
	Bin        string
	Headless   bool
	Width      int
	Height     int
}

// RunnerConfig holds the parallel runner configuration.
type RunnerConfig struct {
	Workers int
	Record  bool
}

// InterpreterConfig holds the timing knobs of the interpreter.
type InterpreterConfig struct {
	Backoff       []time.Duration
	CommandDelay  time.Duration
	TypeSettle    time.Duration
	MaxScopeClimb int
	LabelDepth    int
	Highlight     bool
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoadConfig loads configuration from file and SUI_ environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("sui")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SUI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.driver", database.DriverSQLite)
	v.SetDefault("database.path", "uiscript.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "uiscript")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_dir", "./reports")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_prefix", "")
	v.SetDefault("storage.s3_endpoint", "")
	v.SetDefault("storage.s3_presign_expiry", "15m")

	v.SetDefault("browser.driver", "rod")
	v.SetDefault("browser.control_url", "")
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.width", 1280)
	v.SetDefault("browser.height", 800)

	v.SetDefault("runner.workers", 1)
	v.SetDefault("runner.record", false)

	v.SetDefault("interpreter.backoff", []string{"0s", "5s", "10s", "20s", "30s"})
	v.SetDefault("interpreter.command_delay", interpreter.DefaultCommandDelay.String())
	v.SetDefault("interpreter.type_settle", interpreter.DefaultTypeSettle.String())
	v.SetDefault("interpreter.max_scope_climb", interpreter.DefaultMaxScopeClimb)
	v.SetDefault("interpreter.label_depth", interpreter.DefaultLabelDepth)
	v.SetDefault("interpreter.highlight", false)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	config.Log.Level = v.GetString("log.level")
	config.Log.Format = v.GetString("log.format")

	config.Database.Driver = v.GetString("database.driver")
	config.Database.Path = v.GetString("database.path")
	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")
	config.Database.ConnMaxLifetime = v.GetDuration("database.conn_max_lifetime")

	config.Storage.Type = v.GetString("storage.type")
	config.Storage.BaseDir = v.GetString("storage.base_dir")
	config.Storage.S3Bucket = v.GetString("storage.s3_bucket")
	config.Storage.S3Region = v.GetString("storage.s3_region")
	config.Storage.S3Prefix = v.GetString("storage.s3_prefix")
	config.Storage.S3Endpoint = v.GetString("storage.s3_endpoint")
	config.Storage.S3PresignExpiry = v.GetDuration("storage.s3_presign_expiry")

	config.Browser.Driver = v.GetString("browser.driver")
	config.Browser.ControlURL = v.GetString("browser.control_url")
	config.Browser.Bin = v.GetString("browser.bin")
	config.Browser.Headless = v.GetBool("browser.headless")
	config.Browser.Width = v.GetInt("browser.width")
	config.Browser.Height = v.GetInt("browser.height")

	config.Runner.Workers = v.GetInt("runner.workers")
	config.Runner.Record = v.GetBool("runner.record")

	backoff, err := parseDurations(v.GetStringSlice("interpreter.backoff"))
	if err != nil {
		return nil, fmt.Errorf("invalid interpreter.backoff: %w", err)
	}
	config.Interpreter.Backoff = backoff
	config.Interpreter.CommandDelay = v.GetDuration("interpreter.command_delay")
	config.Interpreter.TypeSettle = v.GetDuration("interpreter.type_settle")
	config.Interpreter.MaxScopeClimb = v.GetInt("interpreter.max_scope_climb")
	config.Interpreter.LabelDepth = v.GetInt("interpreter.label_depth")
	config.Interpreter.Highlight = v.GetBool("interpreter.highlight")

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")
	config.Server.ShutdownTimeout = v.GetDuration("server.shutdown_timeout")

	return &config, nil
}

// parseDurations accepts Go durations ("5s") or bare seconds ("5").
func parseDurations(in []string) ([]time.Duration, error) {
	out := make([]time.Duration, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			secs, serr := time.ParseDuration(s + "s")
			if serr != nil {
				return nil, err
			}
			d = secs
		}
		out = append(out, d)
	}
	return out, nil
}

// dbConfig converts the database section.
func (c *Config) dbConfig() database.Config {
	return database.Config{
		Driver:          c.Database.Driver,
		Path:            c.Database.Path,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}

// storageConfig converts the storage section.
func (c *Config) storageConfig() storage.Config {
	return storage.Config{
		Type:          c.Storage.Type,
		BaseDir:       c.Storage.BaseDir,
		Bucket:        c.Storage.S3Bucket,
		Region:        c.Storage.S3Region,
		Prefix:        c.Storage.S3Prefix,
		Endpoint:      c.Storage.S3Endpoint,
		PresignExpiry: c.Storage.S3PresignExpiry,
	}
}

// interpreterOptions converts the interpreter section.
func (c *Config) interpreterOptions() []interpreter.Option {
	return []interpreter.Option{
		interpreter.WithBackoff(c.Interpreter.Backoff),
		interpreter.WithCommandDelay(c.Interpreter.CommandDelay),
		interpreter.WithTypeSettle(c.Interpreter.TypeSettle),
		interpreter.WithMaxScopeClimb(c.Interpreter.MaxScopeClimb),
		interpreter.WithLabelDepth(c.Interpreter.LabelDepth),
		interpreter.WithHighlight(c.Interpreter.Highlight),
	}
}
