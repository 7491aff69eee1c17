package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	Email    EmailConfig    `yaml:"email"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address               string `yaml:"address"`
	APIPrefix             string `yaml:"api_prefix"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	Mode                  string `yaml:"mode"`
}

func (h HTTPConfig) RequestTimeout() time.Duration {
	return time.Duration(h.RequestTimeoutSeconds) * time.Second
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	// TokenTTLMinutes of 0 issues tokens that never expire.
	TokenTTLMinutes int `yaml:"token_ttl_minutes"`
	BcryptCost      int `yaml:"bcrypt_cost"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

type BookingConfig struct {
	FlightsCacheTTL int `yaml:"flights_cache_ttl_seconds"`
}

func (b BookingConfig) CacheTTL() time.Duration {
	return time.Duration(b.FlightsCacheTTL) * time.Second
}

type WorkerConfig struct {
	ReminderIntervalMinutes int `yaml:"reminder_interval_minutes"`
	ReminderDedupHours      int `yaml:"reminder_dedup_hours"`
}

type EmailConfig struct {
	// Provider is "postmark" or "log".
	Provider       string `yaml:"provider"`
	PostmarkURL    string `yaml:"postmark_url"`
	PostmarkToken  string `yaml:"postmark_token"`
	From           string `yaml:"from"`
	AllowedDomain  string `yaml:"allowed_domain"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig reads the YAML file at path. ${VAR} references are expanded from
// the environment, which is seeded from a .env file when one exists.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.APIPrefix == "" {
		c.HTTP.APIPrefix = "/v1"
	}
	if c.HTTP.RequestTimeoutSeconds == 0 {
		c.HTTP.RequestTimeoutSeconds = 30
	}
	if c.HTTP.Mode == "" {
		c.HTTP.Mode = "release"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Booking.FlightsCacheTTL == 0 {
		c.Booking.FlightsCacheTTL = 60
	}
	if c.Worker.ReminderIntervalMinutes == 0 {
		c.Worker.ReminderIntervalMinutes = 60
	}
	if c.Worker.ReminderDedupHours == 0 {
		c.Worker.ReminderDedupHours = 48
	}
	if c.Email.Provider == "" {
		c.Email.Provider = "log"
	}
	if c.Email.PostmarkURL == "" {
		c.Email.PostmarkURL = "https://api.postmarkapp.com/email"
	}
	if c.Email.TimeoutSeconds == 0 {
		c.Email.TimeoutSeconds = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) validate() error {
	if c.Auth.TokenTTLMinutes < 0 {
		return fmt.Errorf("auth.token_ttl_minutes must not be negative")
	}
	if c.Worker.ReminderIntervalMinutes < 0 {
		return fmt.Errorf("worker.reminder_interval_minutes must not be negative")
	}
	if c.Worker.ReminderDedupHours < 0 {
		return fmt.Errorf("worker.reminder_dedup_hours must not be negative")
	}
	switch c.Email.Provider {
	case "log":
	case "postmark":
		if c.Email.PostmarkToken == "" || c.Email.From == "" {
			return fmt.Errorf("email.postmark_token and email.from are required for the postmark provider")
		}
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}
	return nil
}
