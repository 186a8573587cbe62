package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database  DatabaseConfig
	App       AppConfig
	Payroll   payroll.Config
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	RunMigrations      bool
	MigrationsDir      string
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	// AutoProcessInterval is how often due periods are processed. Zero disables the job.
	AutoProcessInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	runMigrations, err := getEnvBool("RUN_MIGRATIONS", false)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RunMigrations:      runMigrations,
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
	}

	// Payroll configuration
	config.Payroll, err = loadPayroll()
	if err != nil {
		return nil, err
	}

	// Scheduler configuration
	interval, err := time.ParseDuration(getEnv("PAYROLL_AUTO_PROCESS_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_AUTO_PROCESS_INTERVAL: %w", err)
	}
	config.Scheduler = SchedulerConfig{AutoProcessInterval: interval}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadPayroll() (payroll.Config, error) {
	cfg := payroll.DefaultConfig()

	decimals := []struct {
		key    string
		target *decimal.Decimal
	}{
		{"PAYROLL_STANDARD_WORKING_HOURS", &cfg.StandardWorkingHours},
		{"PAYROLL_HOURLY_DIVISOR", &cfg.HourlyDivisor},
		{"PAYROLL_OVERTIME_DIVISOR", &cfg.OvertimeDivisor},
		{"PAYROLL_OVERTIME_MULTIPLIER", &cfg.OvertimeMultiplier},
		{"PAYROLL_TRANSPORT_ALLOWANCE", &cfg.TransportAllowance},
		{"PAYROLL_MINIMUM_WAGE", &cfg.MinimumWage},
		{"PAYROLL_HEALTH_RATE", &cfg.HealthContributionRate},
		{"PAYROLL_PENSION_RATE", &cfg.PensionContributionRate},
		{"PAYROLL_TAX_EXEMPT_AMOUNT", &cfg.IncomeTaxExemptAmount},
		{"PAYROLL_LEAVE_DAY_DIVISOR", &cfg.LeaveDayDivisor},
	}
	for _, d := range decimals {
		value, err := getEnvDecimal(d.key, *d.target)
		if err != nil {
			return payroll.Config{}, err
		}
		*d.target = value
	}

	var err error
	if cfg.StandardWorkingDays, err = getEnvInt("PAYROLL_STANDARD_WORKING_DAYS", cfg.StandardWorkingDays); err != nil {
		return payroll.Config{}, err
	}
	if cfg.Workers, err = getEnvInt("PAYROLL_WORKERS", cfg.Workers); err != nil {
		return payroll.Config{}, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.Scheduler.AutoProcessInterval < 0 {
		return fmt.Errorf("PAYROLL_AUTO_PROCESS_INTERVAL must not be negative")
	}
	if err := c.Payroll.Validate(); err != nil {
		return fmt.Errorf("%w: %w", payroll.ErrInvalidConfig, err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDecimal(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
