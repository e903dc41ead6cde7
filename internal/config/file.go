package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML layout. Keys absent from the file keep the values
// already present in the struct before decoding.
type fileConfig struct {
	App struct {
		Port           int      `yaml:"port"`
		Env            string   `yaml:"env"`
		LogLevel       string   `yaml:"log_level"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"app"`

	Database struct {
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"dbname"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Attendance struct {
		QRSecret             string        `yaml:"qr_secret"`
		QRInterval           time.Duration `yaml:"qr_interval"`
		Office               geo.Office    `yaml:"office"`
		WorkStart            string        `yaml:"work_start"`
		WorkEnd              string        `yaml:"work_end"`
		LateThresholdMinutes int           `yaml:"late_threshold_minutes"`
		HalfDayHours         float64       `yaml:"half_day_hours"`
		Timezone             string        `yaml:"timezone"`
		WorkDays             []int         `yaml:"work_days"`
	} `yaml:"attendance"`

	Notification struct {
		BatchSize     int           `yaml:"batch_size"`
		FlushInterval time.Duration `yaml:"flush_interval"`
		WorkerCount   int           `yaml:"worker_count"`
		QueueSize     int           `yaml:"queue_size"`
	} `yaml:"notification"`

	Storage struct {
		BasePath string `yaml:"base_path"`
	} `yaml:"storage"`
}

// loadFile overlays the YAML file at path onto config. ${VAR} placeholders
// are replaced with environment values before parsing.
func loadFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	// Replace environment variables in the YAML content
	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}

	fc := toFileConfig(config)
	if err := yaml.Unmarshal([]byte(content), fc); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	return fc.apply(config)
}

func toFileConfig(c *Config) *fileConfig {
	fc := &fileConfig{}

	fc.App.Port = c.App.Port
	fc.App.Env = c.App.Env
	fc.App.LogLevel = c.App.LogLevel
	fc.App.AllowedOrigins = c.App.AllowedOrigins

	fc.Database.Driver = c.Database.Driver
	fc.Database.Host = c.Database.Host
	fc.Database.Port = c.Database.Port
	fc.Database.User = c.Database.User
	fc.Database.Password = c.Database.Password
	fc.Database.Name = c.Database.Name
	fc.Database.SSLMode = c.Database.SSLMode

	a := c.Attendance
	fc.Attendance.QRSecret = a.QRSecret
	fc.Attendance.QRInterval = a.QRInterval
	fc.Attendance.Office = a.Office
	fc.Attendance.WorkStart = formatClock(a.WorkStart)
	fc.Attendance.WorkEnd = formatClock(a.WorkEnd)
	fc.Attendance.LateThresholdMinutes = int(a.LateThreshold / time.Minute)
	fc.Attendance.HalfDayHours = a.HalfDayHours
	fc.Attendance.Timezone = a.Timezone
	for _, d := range a.WorkDays {
		fc.Attendance.WorkDays = append(fc.Attendance.WorkDays, int(d))
	}

	fc.Notification.BatchSize = c.Notification.BatchSize
	fc.Notification.FlushInterval = c.Notification.FlushInterval
	fc.Notification.WorkerCount = c.Notification.WorkerCount
	fc.Notification.QueueSize = c.Notification.QueueSize

	fc.Storage.BasePath = c.Storage.BasePath
	return fc
}

func (fc *fileConfig) apply(c *Config) error {
	c.App.Port = fc.App.Port
	c.App.Env = fc.App.Env
	c.App.LogLevel = fc.App.LogLevel
	c.App.AllowedOrigins = fc.App.AllowedOrigins

	c.Database.Driver = fc.Database.Driver
	c.Database.Host = fc.Database.Host
	c.Database.Port = fc.Database.Port
	c.Database.User = fc.Database.User
	c.Database.Password = fc.Database.Password
	c.Database.Name = fc.Database.Name
	c.Database.SSLMode = fc.Database.SSLMode

	start, err := parseClock(fc.Attendance.WorkStart)
	if err != nil {
		return fmt.Errorf("attendance.work_start: %w", err)
	}
	end, err := parseClock(fc.Attendance.WorkEnd)
	if err != nil {
		return fmt.Errorf("attendance.work_end: %w", err)
	}
	days := make([]time.Weekday, 0, len(fc.Attendance.WorkDays))
	for _, d := range fc.Attendance.WorkDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("attendance.work_days: %d is not a weekday", d)
		}
		days = append(days, time.Weekday(d))
	}

	c.Attendance.QRSecret = fc.Attendance.QRSecret
	c.Attendance.QRInterval = fc.Attendance.QRInterval
	c.Attendance.Office = fc.Attendance.Office
	c.Attendance.WorkStart = start
	c.Attendance.WorkEnd = end
	c.Attendance.LateThreshold = time.Duration(fc.Attendance.LateThresholdMinutes) * time.Minute
	c.Attendance.HalfDayHours = fc.Attendance.HalfDayHours
	c.Attendance.Timezone = fc.Attendance.Timezone
	c.Attendance.WorkDays = days

	c.Notification.BatchSize = fc.Notification.BatchSize
	c.Notification.FlushInterval = fc.Notification.FlushInterval
	c.Notification.WorkerCount = fc.Notification.WorkerCount
	c.Notification.QueueSize = fc.Notification.QueueSize

	c.Storage.BasePath = fc.Storage.BasePath
	return nil
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}
