package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Recommend RecommendConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

// RedisConfig is optional: an empty host disables the profile cache.
type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type RecommendConfig struct {
	FetchTimeout      time.Duration
	FeedbackWorkers   int
	FeedbackQueueSize int
	FeedbackTimeout   time.Duration
	ProfileCacheTTL   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "AI Image Studio"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "ai_image_studio"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
	}

	if cfg.Recommend, err = loadRecommendConfig(); err != nil {
		return nil, err
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func loadRecommendConfig() (RecommendConfig, error) {
	fetchTimeout, err := getEnvDuration("RECOMMEND_FETCH_TIMEOUT", 2*time.Second)
	if err != nil {
		return RecommendConfig{}, errors.New("invalid RECOMMEND_FETCH_TIMEOUT")
	}
	workers, err := getEnvInt("FEEDBACK_WORKERS", 4)
	if err != nil || workers <= 0 {
		return RecommendConfig{}, errors.New("invalid FEEDBACK_WORKERS")
	}
	queueSize, err := getEnvInt("FEEDBACK_QUEUE_SIZE", 1024)
	if err != nil || queueSize <= 0 {
		return RecommendConfig{}, errors.New("invalid FEEDBACK_QUEUE_SIZE")
	}
	feedbackTimeout, err := getEnvDuration("FEEDBACK_TIMEOUT", 5*time.Second)
	if err != nil {
		return RecommendConfig{}, errors.New("invalid FEEDBACK_TIMEOUT")
	}
	cacheTTL, err := getEnvDuration("PROFILE_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return RecommendConfig{}, errors.New("invalid PROFILE_CACHE_TTL")
	}

	return RecommendConfig{
		FetchTimeout:      fetchTimeout,
		FeedbackWorkers:   workers,
		FeedbackQueueSize: queueSize,
		FeedbackTimeout:   feedbackTimeout,
		ProfileCacheTTL:   cacheTTL,
	}, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(val)
}
