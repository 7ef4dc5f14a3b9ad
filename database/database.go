// Package database opens the run history database and manages its schema.
package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// ErrUnsupportedDriver is returned for drivers other than sqlite and mysql.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Config holds database connection configuration.
type Config struct {
	Driver string

	// Path is the sqlite database file.
	Path string

	Host     string
	Port     int
	User     string
	Password string
	Database string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NormalizeDriver maps accepted spellings onto DriverSQLite or DriverMySQL.
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "mysql":
		return DriverMySQL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// MySQLDSN builds the DSN for cfg. Multi statements are enabled so a
// migration file can hold more than one statement.
func MySQLDSN(cfg Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.MultiStatements = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

func sqliteDSN(path string) string {
	if path == "" {
		path = "uiscript.db"
	}
	if path == ":memory:" {
		return path
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

// Connect opens a gorm connection for cfg and applies the pool settings.
func Connect(cfg Config) (*gorm.DB, error) {
	driver, err := NormalizeDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.Path))
	case DriverMySQL:
		dialector = gormmysql.Open(MySQLDSN(cfg))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return db, nil
}
