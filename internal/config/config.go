package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowOrigins  string
	ReqTimeoutSec int
	LogLevel      string
	LogFormat     string

	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	SessionTTL      time.Duration
	RegisterCodeTTL time.Duration

	NotifyBackend     string // sendgrid, kafka or log
	NotifyWorkers     int
	NotifyQueueSize   int
	NotifyMaxAttempts int
	NotifyRetryDelay  time.Duration
	SendGridAPIKey    string
	SendGridURL       string
	MailFrom          string
	KafkaBrokers      []string
	KafkaNotifyTopic  string

	MQTTBroker        string
	MQTTClientID      string
	MQTTReadingsTopic string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func list(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads an optional dotenv file and builds the configuration from the
// environment. Variables already set in the environment win over the file.
func Load(envFile string) *Config {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}
	return FromEnv()
}

func FromEnv() *Config {
	return &Config{
		Port:          getenv("PORT", "8080"),
		AllowOrigins:  getenv("ALLOW_ORIGINS", "*"),
		ReqTimeoutSec: atoi("REQUEST_TIMEOUT_SECONDS", 30),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFormat:     getenv("LOG_FORMAT", "json"),

		DBDriver:   getenv("DB_DRIVER", "postgres"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", ""),
		DBName:     getenv("DB_NAME", "oxigo"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),
		SQLitePath: getenv("SQLITE_PATH", "oxigo.db"),

		SessionTTL:      duration("SESSION_TTL", 24*time.Hour),
		RegisterCodeTTL: duration("REGISTER_CODE_TTL", 20*time.Minute),

		NotifyBackend:     getenv("NOTIFY_BACKEND", "sendgrid"),
		NotifyWorkers:     atoi("NOTIFY_WORKERS", 2),
		NotifyQueueSize:   atoi("NOTIFY_QUEUE_SIZE", 256),
		NotifyMaxAttempts: atoi("NOTIFY_MAX_ATTEMPTS", 3),
		NotifyRetryDelay:  duration("NOTIFY_RETRY_DELAY", 2*time.Second),
		SendGridAPIKey:    getenv("SENDGRID_API_KEY", ""),
		SendGridURL:       getenv("SENDGRID_URL", "https://api.sendgrid.com/v3/mail/send"),
		MailFrom:          getenv("MAIL_FROM", "no-reply@oxigo.app"),
		KafkaBrokers:      list("KAFKA_BROKERS"),
		KafkaNotifyTopic:  getenv("KAFKA_NOTIFY_TOPIC", "oxigo.notifications"),

		MQTTBroker:        getenv("MQTT_BROKER", ""),
		MQTTClientID:      getenv("MQTT_CLIENT_ID", "oxigo-server"),
		MQTTReadingsTopic: getenv("MQTT_READINGS_TOPIC", "oxigo/readings"),
	}
}
