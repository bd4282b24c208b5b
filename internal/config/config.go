package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultCartTTL = 30 * time.Minute

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	AppPort    string
	AppEnv     string
	JWTSecret  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime time.Duration

	CartTTL           time.Duration
	UploadFunctionURL string
	MigrationsAuto    bool
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            os.Getenv("DB_PORT"),
		DBSSLMode:         os.Getenv("DB_SSLMODE"),
		DBMaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetime:    time.Duration(envInt("DB_CONN_LIFETIME_MINUTES", 30)) * time.Minute,
		AppPort:           os.Getenv("APP_PORT"),
		AppEnv:            os.Getenv("APP_ENV"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           envInt("REDIS_DB", 0),
		CartTTL:           time.Duration(envInt("CART_TTL_MINUTES", 0)) * time.Minute,
		UploadFunctionURL: os.Getenv("UPLOAD_FUNCTION_URL"),
		MigrationsAuto:    os.Getenv("MIGRATIONS_AUTO") == "true",
	}

	if cfg.CartTTL <= 0 {
		cfg.CartTTL = defaultCartTTL
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}
