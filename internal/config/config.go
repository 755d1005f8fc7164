package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Security SecurityConfig `mapstructure:"security"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Backup   BackupConfig   `mapstructure:"backup"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	Secret     string `mapstructure:"secret"`
	ExpiryDays int    `mapstructure:"expiry_days"`
}

type SecurityConfig struct {
	MaxLoginAttempts   int `mapstructure:"max_login_attempts"`
	LockoutMinutes     int `mapstructure:"lockout_minutes"`
	PasswordMaxAgeDays int `mapstructure:"password_max_age_days"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type BackupConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Schedule      string `mapstructure:"schedule"`
	Directory     string `mapstructure:"directory"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// LockoutWindow returns the lockout duration applied once the failed
// attempt threshold is reached.
func (s SecurityConfig) LockoutWindow() time.Duration {
	return time.Duration(s.LockoutMinutes) * time.Minute
}

// SessionExpiry returns the absolute session lifetime.
func (s SessionConfig) SessionExpiry() time.Duration {
	return time.Duration(s.ExpiryDays) * 24 * time.Hour
}

func LoadConfig() *Config {
	config := &Config{}

	// Set default values
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "3090")
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "dev")
	viper.SetDefault("database.password", "devpass")
	viper.SetDefault("database.name", "studio")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("session.secret", "change-this-session-secret-in-production")
	viper.SetDefault("session.expiry_days", 30)

	viper.SetDefault("security.max_login_attempts", 5)
	viper.SetDefault("security.lockout_minutes", 30)
	viper.SetDefault("security.password_max_age_days", 90)

	viper.SetDefault("nats.url", "")

	viper.SetDefault("backup.enabled", false)
	viper.SetDefault("backup.schedule", "0 0 2 * * *")
	viper.SetDefault("backup.directory", "./backups")
	viper.SetDefault("backup.retention_days", 30)

	// Read from environment variables
	viper.AutomaticEnv()

	// Override with environment variables if they exist
	if host := os.Getenv("SERVER_HOST"); host != "" {
		viper.Set("server.host", host)
	}
	if port := os.Getenv("PORT"); port != "" {
		viper.Set("server.port", port)
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		viper.Set("server.mode", mode)
	}

	// Database environment variables
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		viper.Set("database.host", dbHost)
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		viper.Set("database.port", dbPort)
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		viper.Set("database.user", dbUser)
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		viper.Set("database.password", dbPassword)
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		viper.Set("database.name", dbName)
	}
	if dbSSLMode := os.Getenv("DB_SSLMODE"); dbSSLMode != "" {
		viper.Set("database.sslmode", dbSSLMode)
	}

	// Redis environment variables
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		viper.Set("redis.host", redisHost)
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		viper.Set("redis.port", redisPort)
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		viper.Set("redis.password", redisPassword)
	}

	// Session environment variables
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		viper.Set("session.secret", secret)
	}
	if expiry := os.Getenv("SESSION_EXPIRY_DAYS"); expiry != "" {
		viper.Set("session.expiry_days", expiry)
	}

	// Security environment variables
	if attempts := os.Getenv("MAX_LOGIN_ATTEMPTS"); attempts != "" {
		viper.Set("security.max_login_attempts", attempts)
	}
	if lockout := os.Getenv("LOCKOUT_MINUTES"); lockout != "" {
		viper.Set("security.lockout_minutes", lockout)
	}

	// NATS environment variables
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		viper.Set("nats.url", natsURL)
	}

	// Backup environment variables
	if enabled := os.Getenv("BACKUP_ENABLED"); enabled != "" {
		viper.Set("backup.enabled", enabled == "true" || enabled == "1")
	}
	if schedule := os.Getenv("BACKUP_SCHEDULE"); schedule != "" {
		viper.Set("backup.schedule", schedule)
	}
	if dir := os.Getenv("BACKUP_DIR"); dir != "" {
		viper.Set("backup.directory", dir)
	}

	// Unmarshal into config struct
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	return config
}
