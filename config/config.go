/*
Package config loads service configuration from the environment.

RECOGNIZED VARIABLES:
  PORT          HTTP listen port            (default 8080)
  STOCK_MODE    "flat" or "normalized"      (default flat)
  DB_DRIVER     "mysql" or "sqlite3"        (default mysql)
  DB_HOST       MySQL host                  (required with mysql)
  DB_PORT       MySQL port                  (default 3306)
  DB_USER       MySQL user                  (required with mysql)
  DB_PASS       MySQL password
  DB_NAME       MySQL database              (required with mysql)
  DB_PATH       SQLite file path            (default stock.db; sqlite3 only)
  CORS_ORIGINS  comma-separated allowed origins (default *)

A .env file in the working directory is loaded first when present.
Missing required variables produce a descriptive error so the operator sees
which parameter is absent instead of a bare connection failure.
*/
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/warp/stock-api/inventory"
)

// Driver names accepted in DB_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Config is the resolved service configuration.
type Config struct {
	Port   string
	Mode   inventory.Mode
	Driver string

	// MySQL connection parameters.
	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	// SQLite file path.
	DBPath string

	CORSOrigins []string
}

// Load reads the environment (and .env when present) into a Config.
func Load() (*Config, error) {
	// Best effort: absence of a .env file is the normal case.
	_ = godotenv.Load()

	mode, err := inventory.ParseMode(getEnv("STOCK_MODE", string(inventory.ModeFlat)))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Mode:        mode,
		Driver:      getEnv("DB_DRIVER", DriverMySQL),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      getEnv("DB_PORT", "3306"),
		DBUser:      os.Getenv("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"),
		DBName:      os.Getenv("DB_NAME"),
		DBPath:      getEnv("DB_PATH", "stock.db"),
		CORSOrigins: splitOrigins(getEnv("CORS_ORIGINS", "*")),
	}

	switch cfg.Driver {
	case DriverMySQL:
		var missing []string
		if cfg.DBHost == "" {
			missing = append(missing, "DB_HOST")
		}
		if cfg.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if cfg.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", "))
		}
	case DriverSQLite:
		// DB_PATH always has a default.
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q (want %q or %q)", cfg.Driver, DriverMySQL, DriverSQLite)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
