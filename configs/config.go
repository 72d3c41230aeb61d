package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

func loadEnv() {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})
}

func Config(key string) string {
	loadEnv()
	return os.Getenv(key)
}

// Settings is the typed view of the environment the API needs at startup.
type Settings struct {
	Port            string
	AppEnv          string
	StoreDriver     string
	DatabaseURL     string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	JWTSecret       string
	CORSOrigins     string
	ReconcileCron   string
	DBTimeout       time.Duration
	StatsTTL        time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
	CloudinaryURL   string
	UploadFolder    string
	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string
}

func (s *Settings) IsProduction() bool {
	return strings.EqualFold(s.AppEnv, "production")
}

func Load() *Settings {
	return &Settings{
		Port:            getEnv("PORT", "4000"),
		AppEnv:          getEnv("APP_ENV", "development"),
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		DatabaseURL:     Config("DATABASE_URL"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "tutorsdb"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   Config("REDIS_PASSWORD"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		JWTSecret:       Config("ACCESS_TOKEN_SECRET"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:5173"),
		ReconcileCron:   getEnv("RECONCILE_CRON", "*/15 * * * *"),
		DBTimeout:       getEnvDuration("DB_TIMEOUT", 10*time.Second),
		StatsTTL:        getEnvDuration("STATS_TTL", 30*time.Second),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 10),
		CloudinaryURL:   Config("CLOUDINARY_URL"),
		UploadFolder:    getEnv("UPLOAD_FOLDER", "tutor_hunt_images"),
		BrevoAPIKey:     Config("BREVO_API_KEY"),
		EmailSender:     Config("EMAIL_SENDER"),
		EmailSenderName: Config("EMAIL_SENDER_NAME"),
	}
}

func getEnv(key, def string) string {
	if v := Config(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := Config(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := Config(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := Config(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
