package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EmailConfig holds SMTP settings for the email notification channel.
// Leaving Host empty disables email delivery.
type EmailConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
	From     string `yaml:"from" json:"from"`
}

// RedisConfig enables publishing notifications to a Redis channel.
type RedisConfig struct {
	URL     string `yaml:"url" json:"url"`
	Channel string `yaml:"channel" json:"channel"`
}

// NotificationsConfig selects the delivery channels.
type NotificationsConfig struct {
	// Local toggles the in-app notification centre. Turning it off has the
	// same effect as a denied notification permission.
	Local bool        `yaml:"local" json:"local"`
	Email EmailConfig `yaml:"email" json:"email"`
	Redis RedisConfig `yaml:"redis" json:"redis"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// DataDir holds the key-value database file.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// WeekStart is the first column of calendar grids: "sunday" (default)
	// or "monday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// CheckSchedule is the cron spec for reminder scans.
	CheckSchedule string `yaml:"check_schedule" json:"check_schedule"`

	// FiringWindow is how long before its time a reminder may fire.
	FiringWindow time.Duration `yaml:"firing_window" json:"firing_window"`

	// EmailTimeout bounds a single dispatch across all channels.
	EmailTimeout time.Duration `yaml:"email_timeout" json:"email_timeout"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	Notifications NotificationsConfig `yaml:"notifications" json:"notifications"`

	// ImportURLs lets POST /api/import?url= fetch remote calendars. It only
	// takes effect together with BasicAuth, since the daemon makes the
	// request on the caller's behalf.
	ImportURLs bool `yaml:"import_urls" json:"import_urls"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        "127.0.0.1:8080",
		DataDir:       "/var/lib/remindcal",
		WeekStart:     "sunday",
		CheckSchedule: "@every 60s",
		FiringWindow:  5 * time.Minute,
		EmailTimeout:  30 * time.Second,
		LogLevel:      "info",
		Notifications: NotificationsConfig{
			Local: true,
			Email: EmailConfig{Port: 587},
			Redis: RedisConfig{Channel: "reminders"},
		},
	}
}

// Normalize fills in missing/zero values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	switch c.WeekStart {
	case "sunday", "monday":
	default:
		c.WeekStart = def.WeekStart
	}
	if c.CheckSchedule == "" {
		c.CheckSchedule = def.CheckSchedule
	}
	if c.FiringWindow <= 0 {
		c.FiringWindow = def.FiringWindow
	}
	if c.EmailTimeout <= 0 {
		c.EmailTimeout = def.EmailTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Notifications.Email.Port == 0 {
		c.Notifications.Email.Port = def.Notifications.Email.Port
	}
	if c.Notifications.Redis.Channel == "" {
		c.Notifications.Redis.Channel = def.Notifications.Redis.Channel
	}
}

// WeekStartDay maps WeekStart onto a time.Weekday.
func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// ApplyEnv overrides secrets from the environment (SMTP_HOST, SMTP_PORT,
// SMTP_USER, SMTP_PASSWORD, SMTP_FROM, REDIS_URL).
func (c *Config) ApplyEnv() {
	email := &c.Notifications.Email
	if v := os.Getenv("SMTP_HOST"); v != "" {
		email.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			email.Port = port
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		email.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		email.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		email.From = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Notifications.Redis.URL = v
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there with
//     0600 permissions and returned.
//   - Otherwise the YAML is decoded over DefaultConfig and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	// Decode over the defaults so omitted keys keep their default values.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".remindcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
