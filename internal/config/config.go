package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds client, storage and mock-backend configuration
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Redis   RedisConfig
	MongoDB MongoDBConfig
	MinIO   MinIOConfig
	SQL     SQLConfig
	Log     LogConfig
	Mock    MockConfig
}

type APIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	AuthScheme string
	UserAgent  string
}

type StorageConfig struct {
	Backend   string
	Namespace string
	Path      string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type SQLConfig struct {
	DSN   string
	Table string
}

type LogConfig struct {
	Level string
}

type MockConfig struct {
	Host             string
	Port             string
	JWTSecret        string
	TokenTTL         time.Duration
	LoginRedirectURL string
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	RateLimitWindow  time.Duration
}

// RedisAddress returns host:port, or "" when Redis is not configured.
func (r RedisConfig) RedisAddress() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

// Address returns the mock backend listen address.
func (m MockConfig) Address() string {
	return fmt.Sprintf("%s:%s", m.Host, m.Port)
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("API_BASE_URL", "http://localhost:3000")
	v.SetDefault("API_TIMEOUT", "0s")
	v.SetDefault("API_AUTH_SCHEME", "JWT")
	v.SetDefault("API_USER_AGENT", "slotlist-go-client")

	v.SetDefault("STORAGE_BACKEND", "file")
	v.SetDefault("STORAGE_NAMESPACE", "slotlist")
	v.SetDefault("STORAGE_PATH", filepath.Join(home, ".slotlist", "storage.json"))

	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("MONGODB_DATABASE", "slotlist")
	v.SetDefault("MONGODB_COLLECTION", "local_storage")
	v.SetDefault("MONGODB_TIMEOUT", 10)

	v.SetDefault("MINIO_BUCKET", "slotlist")

	v.SetDefault("SQL_DSN", filepath.Join(home, ".slotlist", "storage.db"))
	v.SetDefault("SQL_TABLE", "local_storage")

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("MOCK_HOST", "0.0.0.0")
	v.SetDefault("MOCK_PORT", "3000")
	v.SetDefault("MOCK_TOKEN_TTL", "1h")
	v.SetDefault("MOCK_LOGIN_REDIRECT_URL", "https://steamcommunity.com/openid/login")
	v.SetDefault("MOCK_RATE_LIMIT_ENABLED", false)
	v.SetDefault("MOCK_RATE_LIMIT_RPS", 10)
	v.SetDefault("MOCK_RATE_LIMIT_BURST", 20)
	v.SetDefault("MOCK_RATE_LIMIT_WINDOW", "1s")
}

// LoadConfig loads configuration from environment variables, a .env file and,
// when file is non-empty, a YAML config file. Environment variables win over
// the config file.
func LoadConfig(file string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				return nil, fmt.Errorf("config file %s not found: %w", file, err)
			}
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:    strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
			Timeout:    v.GetDuration("API_TIMEOUT"),
			AuthScheme: v.GetString("API_AUTH_SCHEME"),
			UserAgent:  v.GetString("API_USER_AGENT"),
		},
		Storage: StorageConfig{
			Backend:   strings.ToLower(v.GetString("STORAGE_BACKEND")),
			Namespace: v.GetString("STORAGE_NAMESPACE"),
			Path:      v.GetString("STORAGE_PATH"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		MongoDB: MongoDBConfig{
			URI:        v.GetString("MONGODB_URI"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		SQL: SQLConfig{
			DSN:   v.GetString("SQL_DSN"),
			Table: v.GetString("SQL_TABLE"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Mock: MockConfig{
			Host:             v.GetString("MOCK_HOST"),
			Port:             v.GetString("MOCK_PORT"),
			JWTSecret:        v.GetString("JWT_SECRET"),
			TokenTTL:         v.GetDuration("MOCK_TOKEN_TTL"),
			LoginRedirectURL: v.GetString("MOCK_LOGIN_REDIRECT_URL"),
			RateLimitEnabled: v.GetBool("MOCK_RATE_LIMIT_ENABLED"),
			RateLimitRPS:     v.GetFloat64("MOCK_RATE_LIMIT_RPS"),
			RateLimitBurst:   v.GetInt("MOCK_RATE_LIMIT_BURST"),
			RateLimitWindow:  v.GetDuration("MOCK_RATE_LIMIT_WINDOW"),
		},
	}

	if cfg.API.BaseURL == "" {
		return nil, errors.New("API_BASE_URL must not be empty")
	}
	if cfg.Storage.Namespace == "" {
		return nil, errors.New("STORAGE_NAMESPACE must not be empty")
	}
	return cfg, nil
}
