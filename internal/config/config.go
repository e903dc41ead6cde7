package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/joho/godotenv"
)

// DevQRSecret is the token secret used when none is configured. It is
// rejected when APP_ENV is production.
const DevQRSecret = "attendance-dev-secret-change-me"

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Attendance   AttendanceConfig
	Notification NotificationConfig
	Storage      StorageConfig
	OAuth2Google OAuth2GoogleConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Version        string
	AllowedOrigins []string
}

// AttendanceConfig holds the QR token, geofence and schedule settings
type AttendanceConfig struct {
	QRSecret      string
	QRInterval    time.Duration
	QRImageSize   int
	Office        geo.Office
	WorkStart     time.Duration
	WorkEnd       time.Duration
	LateThreshold time.Duration
	HalfDayHours  float64
	Timezone      string
	WorkDays      []time.Weekday
}

// NotificationConfig mirrors the notification worker settings
type NotificationConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	WorkerCount   int
	QueueSize     int
}

type StorageConfig struct {
	// BasePath enables archiving when non-empty.
	BasePath string
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:  StoreDriverPostgres,
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "hris_attendance",
			SSLMode: "disable",
		},
		JWT: JWTConfig{
			AccessExpiration: time.Hour,
		},
		App: AppConfig{
			Port:           8080,
			Env:            "development",
			LogLevel:       "info",
			Version:        "v1.0.0",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Attendance: AttendanceConfig{
			QRSecret:    DevQRSecret,
			QRInterval:  5 * time.Minute,
			QRImageSize: 300,
			Office: geo.Office{
				Point:        geo.Point{Latitude: 16.0544, Longitude: 108.2022},
				RadiusMeters: 200,
			},
			WorkStart:     8 * time.Hour,
			WorkEnd:       17 * time.Hour,
			LateThreshold: 15 * time.Minute,
			HalfDayHours:  4,
			Timezone:      "Asia/Ho_Chi_Minh",
			WorkDays:      []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		},
		Notification: NotificationConfig{
			BatchSize:     100,
			FlushInterval: 5 * time.Second,
			WorkerCount:   2,
			QueueSize:     1000,
		},
	}
}

// Load reads .env, then the optional YAML file, then environment variables.
// Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found")
	}

	config := defaults()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if err := loadFile(config, path); err != nil {
		if !errors.Is(err, os.ErrNotExist) || os.Getenv("CONFIG_FILE") != "" {
			return nil, err
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func applyEnv(config *Config) error {
	var err error

	// Database configuration
	config.Database.Driver = getEnv("STORE_DRIVER", config.Database.Driver)
	config.Database.Host = getEnv("DB_HOST", config.Database.Host)
	if config.Database.Port, err = getEnvInt("DB_PORT", config.Database.Port); err != nil {
		return err
	}
	config.Database.User = getEnv("DB_USER", config.Database.User)
	config.Database.Password = getEnv("DB_PASSWORD", config.Database.Password)
	config.Database.Name = getEnv("DB_NAME", config.Database.Name)
	config.Database.SSLMode = getEnv("DB_SSL_MODE", config.Database.SSLMode)
	maxConns, err := getEnvInt("DB_MAX_CONNS", int(config.Database.MaxConns))
	if err != nil {
		return err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", int(config.Database.MinConns))
	if err != nil {
		return err
	}
	config.Database.MaxConns, config.Database.MinConns = int32(maxConns), int32(minConns)

	// Application configuration
	if config.App.Port, err = getEnvInt("APP_PORT", config.App.Port); err != nil {
		return err
	}
	config.App.Env = getEnv("APP_ENV", config.App.Env)
	config.App.LogLevel = getEnv("LOG_LEVEL", config.App.LogLevel)
	config.App.Version = getEnv("APP_VERSION", config.App.Version)
	if origins := getEnvSlice("CORS_ALLOWED_ORIGINS"); len(origins) > 0 {
		config.App.AllowedOrigins = origins
	}

	// JWT configuration
	config.JWT.Secret = getEnv("JWT_SECRET_KEY", config.JWT.Secret)
	if config.JWT.AccessExpiration, err = getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", config.JWT.AccessExpiration); err != nil {
		return err
	}

	// Attendance configuration
	a := &config.Attendance
	a.QRSecret = getEnv("ATTENDANCE_QR_SECRET", a.QRSecret)
	if a.QRInterval, err = getEnvDuration("QR_TOKEN_INTERVAL", a.QRInterval); err != nil {
		return err
	}
	if a.QRImageSize, err = getEnvInt("QR_IMAGE_SIZE", a.QRImageSize); err != nil {
		return err
	}
	if a.Office.Latitude, err = getEnvFloat("OFFICE_LATITUDE", a.Office.Latitude); err != nil {
		return err
	}
	if a.Office.Longitude, err = getEnvFloat("OFFICE_LONGITUDE", a.Office.Longitude); err != nil {
		return err
	}
	if a.Office.RadiusMeters, err = getEnvFloat("OFFICE_RADIUS_METERS", a.Office.RadiusMeters); err != nil {
		return err
	}
	if a.WorkStart, err = getEnvClock("WORK_START", a.WorkStart); err != nil {
		return err
	}
	if a.WorkEnd, err = getEnvClock("WORK_END", a.WorkEnd); err != nil {
		return err
	}
	lateMinutes, err := getEnvInt("LATE_THRESHOLD_MINUTES", int(a.LateThreshold/time.Minute))
	if err != nil {
		return err
	}
	a.LateThreshold = time.Duration(lateMinutes) * time.Minute
	if a.HalfDayHours, err = getEnvFloat("HALF_DAY_HOURS", a.HalfDayHours); err != nil {
		return err
	}
	a.Timezone = getEnv("APP_TIMEZONE", a.Timezone)
	if days := getEnvSlice("WORK_DAYS"); len(days) > 0 {
		if a.WorkDays, err = parseWeekdays(days); err != nil {
			return fmt.Errorf("invalid WORK_DAYS: %w", err)
		}
	}

	// Notification workers
	n := &config.Notification
	if n.BatchSize, err = getEnvInt("NOTIFICATION_BATCH_SIZE", n.BatchSize); err != nil {
		return err
	}
	if n.FlushInterval, err = getEnvDuration("NOTIFICATION_FLUSH_INTERVAL", n.FlushInterval); err != nil {
		return err
	}
	if n.WorkerCount, err = getEnvInt("NOTIFICATION_WORKER_COUNT", n.WorkerCount); err != nil {
		return err
	}
	if n.QueueSize, err = getEnvInt("NOTIFICATION_QUEUE_SIZE", n.QueueSize); err != nil {
		return err
	}

	// Storage
	config.Storage.BasePath = getEnv("STORAGE_BASE_PATH", config.Storage.BasePath)

	// OAuth2 Google Configuration
	config.OAuth2Google.ClientID = getEnv("GOOGLE_CLIENT_ID", config.OAuth2Google.ClientID)
	config.OAuth2Google.ClientSecret = getEnv("GOOGLE_CLIENT_SECRET", config.OAuth2Google.ClientSecret)
	config.OAuth2Google.RedirectURL = getEnv("GOOGLE_REDIRECT_URL", config.OAuth2Google.RedirectURL)
	if scopes := getEnvSlice("GOOGLE_SCOPES"); len(scopes) > 0 {
		config.OAuth2Google.Scopes = scopes
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case StoreDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.QRSecret == "" {
		return fmt.Errorf("ATTENDANCE_QR_SECRET is required")
	}
	if c.IsProduction() && c.Attendance.QRSecret == DevQRSecret {
		return fmt.Errorf("ATTENDANCE_QR_SECRET must be set in production")
	}
	if c.Attendance.QRInterval < time.Second {
		return fmt.Errorf("QR_TOKEN_INTERVAL must be at least 1s")
	}
	if err := c.Attendance.Office.Validate(); err != nil {
		return err
	}
	if c.Attendance.WorkEnd <= c.Attendance.WorkStart {
		return fmt.Errorf("WORK_END must be after WORK_START")
	}
	if c.Attendance.HalfDayHours <= 0 {
		return fmt.Errorf("HALF_DAY_HOURS must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.OAuth2Google.Enabled() && c.OAuth2Google.RedirectURL == "" {
		return fmt.Errorf("GOOGLE_REDIRECT_URL is required when google login is enabled")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// Location loads the service time zone used for calendar dates.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Attendance.Timezone)
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

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvClock(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := parseClock(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// parseClock turns "HH:MM" into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	if !validator.IsValidClock(s) {
		return 0, fmt.Errorf("%q is not a HH:MM time", s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func parseWeekdays(values []string) ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("%q is not a weekday number between 0 (Sunday) and 6", v)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}
