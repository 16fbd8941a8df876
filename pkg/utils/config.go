package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Email     EmailConfig
	NSQ       NSQConfig
	Notify    NotifyConfig
	OTP       OTPConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name            string
	Port            string
	Debug           bool
	LogPath         string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	TTL time.Duration
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type NSQConfig struct {
	Addr  string
	Topic string
}

// NotifyConfig controls how notifications leave the process.
// Driver is one of "smtp", "nsq" or "log".
type NotifyConfig struct {
	Driver     string
	Workers    int
	QueueSize  int
	MaxRetries uint64
	Timeout    time.Duration
}

type OTPConfig struct {
	ExpiryMinutes int
	Length        int
	MaxAttempts   int
	SweepInterval time.Duration
	UniformErrors bool
}

// TTL returns the validity window of an issued OTP.
func (c OTPConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

type RateLimitConfig struct {
	Driver      string
	LoginMax    int
	LoginWindow time.Duration
	OTPMax      int
	OTPWindow   time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "account-service")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 15)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("SMTP_PORT", 2525)
	viper.SetDefault("NSQ_TOPIC", "account.notifications")
	viper.SetDefault("NOTIFY_DRIVER", "log")
	viper.SetDefault("NOTIFY_WORKERS", 4)
	viper.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	viper.SetDefault("NOTIFY_MAX_RETRIES", 3)
	viper.SetDefault("NOTIFY_TIMEOUT_SECONDS", 10)
	viper.SetDefault("OTP_EXPIRY_MINUTES", 10)
	viper.SetDefault("OTP_LENGTH", 6)
	viper.SetDefault("OTP_MAX_ATTEMPTS", 5)
	viper.SetDefault("OTP_SWEEP_INTERVAL_SECONDS", 60)
	viper.SetDefault("OTP_UNIFORM_ERRORS", false)
	viper.SetDefault("RATE_LIMIT_DRIVER", "memory")
	viper.SetDefault("LOGIN_RATE_LIMIT_MAX", 3)
	viper.SetDefault("LOGIN_RATE_LIMIT_WINDOW_MINUTES", 15)
	viper.SetDefault("OTP_RATE_LIMIT_MAX", 10)
	viper.SetDefault("OTP_RATE_LIMIT_WINDOW_MINUTES", 15)

	// .env is optional, the environment always wins
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:            viper.GetString("APP_NAME"),
			Port:            viper.GetString("PORT"),
			Debug:           viper.GetBool("DEBUG"),
			LogPath:         viper.GetString("LOG_PATH"),
			CORSOrigins:     splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			ShutdownTimeout: seconds(viper.GetInt("SHUTDOWN_TIMEOUT_SECONDS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			TTL: time.Duration(viper.GetInt("SESSION_TTL_HOURS")) * time.Hour,
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		NSQ: NSQConfig{
			Addr:  viper.GetString("NSQ_ADDR"),
			Topic: viper.GetString("NSQ_TOPIC"),
		},
		Notify: NotifyConfig{
			Driver:     strings.ToLower(viper.GetString("NOTIFY_DRIVER")),
			Workers:    viper.GetInt("NOTIFY_WORKERS"),
			QueueSize:  viper.GetInt("NOTIFY_QUEUE_SIZE"),
			MaxRetries: viper.GetUint64("NOTIFY_MAX_RETRIES"),
			Timeout:    seconds(viper.GetInt("NOTIFY_TIMEOUT_SECONDS")),
		},
		OTP: OTPConfig{
			ExpiryMinutes: viper.GetInt("OTP_EXPIRY_MINUTES"),
			Length:        viper.GetInt("OTP_LENGTH"),
			MaxAttempts:   viper.GetInt("OTP_MAX_ATTEMPTS"),
			SweepInterval: seconds(viper.GetInt("OTP_SWEEP_INTERVAL_SECONDS")),
			UniformErrors: viper.GetBool("OTP_UNIFORM_ERRORS"),
		},
		RateLimit: RateLimitConfig{
			Driver:      strings.ToLower(viper.GetString("RATE_LIMIT_DRIVER")),
			LoginMax:    viper.GetInt("LOGIN_RATE_LIMIT_MAX"),
			LoginWindow: time.Duration(viper.GetInt("LOGIN_RATE_LIMIT_WINDOW_MINUTES")) * time.Minute,
			OTPMax:      viper.GetInt("OTP_RATE_LIMIT_MAX"),
			OTPWindow:   time.Duration(viper.GetInt("OTP_RATE_LIMIT_WINDOW_MINUTES")) * time.Minute,
		},
	}

	return config, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
