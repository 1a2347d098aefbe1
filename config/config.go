package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"table-order-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds everything read from the environment at startup
type Config struct {
	Port        string
	GinMode     string
	Env         string
	FrontendURL string
	CORSOrigins []string
	SeedOnStart bool

	// initial passwords for the seeded admin and staff accounts
	SeedAdminPassword string
	SeedStaffPassword string

	JWTSecret  []byte
	SessionTTL time.Duration

	// QR scans allowed per client IP per minute
	QRRatePerMinute int

	DB DBConfig
}

type DBConfig struct {
	Driver          string // sqlite or postgres
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// Load reads .env (if present) and the process environment
func Load() Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	frontend := getEnv("FRONTEND_URL", "http://localhost:13000")
	return Config{
		Port:              getEnv("PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		Env:               getEnv("APP_ENV", "development"),
		FrontendURL:       strings.TrimRight(frontend, "/"),
		CORSOrigins:       strings.Split(getEnv("CORS_ORIGINS", frontend), ","),
		SeedOnStart:       getEnv("SEED_ON_START", "false") == "true",
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "Password123!"),
		SeedStaffPassword: getEnv("SEED_STAFF_PASSWORD", "CafeStaff123!"),
		JWTSecret:         []byte(getEnv("JWT_SECRET", "table_order_dev_secret")),
		SessionTTL:        time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		QRRatePerMinute:   getEnvInt("QR_RATE_PER_MINUTE", 30),
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			DSN:             getEnv("DB_DSN", "table_order.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
	}
}

func dialector(cfg DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// OpenDB connects, tunes the pool and migrates every model
func OpenDB(cfg DBConfig, log *zap.Logger) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	log.Info("database connected and migrated",
		zap.String("driver", cfg.Driver),
		zap.Int("max_open_conns", cfg.MaxOpenConns))
	return db, nil
}
