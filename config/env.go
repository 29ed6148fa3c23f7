package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	AppEnv        string
	Port          string
	EnvFileLoaded bool

	StoreDriver   string
	DatabaseURL   string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	MigrationsDir string

	RedisURL      string
	RedisAddr     string
	RedisPassword string
	CartTTL       time.Duration

	JWTSecret  string
	SessionTTL time.Duration
	OriginURL  string
	StaticDir  string

	DefaultImage          string
	AddedMessage          string
	CurrencyLabel         string
	NotificationTTL       time.Duration
	NotificationFade      time.Duration
	CheckoutRedirectDelay time.Duration

	KafkaBroker string
	KafkaTopic  string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	OrderEmailTo string
}

var AppConfig *Config

func LoadConfig() *Config {
	loaded := godotenv.Load() == nil

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || smtpPort == 0 {
		smtpPort = 587
	}

	AppConfig = &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("APP_PORT", getEnv("PORT", "8082")),
		EnvFileLoaded: loaded,

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5454"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "storefront"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "database/migration"),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CartTTL:       getDuration("CART_TTL", 0),

		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		SessionTTL: getDuration("SESSION_TTL", 30*24*time.Hour),
		OriginURL:  os.Getenv("ORIGIN_URL"),
		StaticDir:  getEnv("STATIC_DIR", "./public"),

		DefaultImage:          getEnv("DEFAULT_IMAGE", "images/kitten.jpg"),
		AddedMessage:          getEnv("ADDED_MESSAGE", "%s добавлен в корзину"),
		CurrencyLabel:         getEnv("CURRENCY_LABEL", "руб"),
		NotificationTTL:       getDuration("NOTIFICATION_TTL", 2*time.Second),
		NotificationFade:      getDuration("NOTIFICATION_FADE", 300*time.Millisecond),
		CheckoutRedirectDelay: getDuration("CHECKOUT_REDIRECT_DELAY", 500*time.Millisecond),

		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "cart.checked_out"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		OrderEmailTo: os.Getenv("ORDER_EMAIL_TO"),
	}

	return AppConfig
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
