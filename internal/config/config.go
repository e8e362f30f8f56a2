package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	App      AppConfig
	IRC      IRCConfig
	Ai       AIConfig
	Bot      BotConfig
	Database DatabaseConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Environment string `validate:"oneof=development production test"`
	LogFilePath string `validate:"required"`
	StatusAddr  string // empty disables the status server
	NatsURL     string // empty disables the event mirror
	RedisURL    string // empty uses the in-process record cache
	CacheTTL    time.Duration
}

type IRCConfig struct {
	Server   string `validate:"required,hostname|ip"`
	Port     int    `validate:"min=1,max=65535"`
	TLS      bool
	Nick     string `validate:"required,max=30"`
	AltNick  string
	Password string
	Channels []string `validate:"dive,startswith=#"`
	Owner    string
}

type AIConfig struct {
	Provider       string        `validate:"required"`
	APIURL         string        `validate:"omitempty,url"`
	APIKey         string        `validate:"required"`
	Model          string        `validate:"required"`
	MaxAttempts    int           `validate:"min=1"`
	AttemptTimeout time.Duration `validate:"min=1ms"`
	MaxConcurrent  int64         `validate:"min=1"`
	Temperature    float64       `validate:"min=0,max=2"`
}

type BotConfig struct {
	ChunkSize int `validate:"min=1"`
}

type DatabaseConfig struct {
	Connection string `validate:"required"`
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "bot.log"),
			StatusAddr:  getEnv("STATUS_ADDR", ":8080"),
			NatsURL:     getEnv("NATS_URL", ""),
			RedisURL:    getEnv("REDIS_URL", ""),
			CacheTTL:    getEnvAsDuration("CACHE_TTL", time.Hour),
		},
		IRC: IRCConfig{
			Server:   getEnv("IRC_SERVER", "irc.libera.chat"),
			Port:     getEnvAsInt("IRC_PORT", 6667),
			TLS:      getEnvAsBool("IRC_TLS", false),
			Nick:     getEnv("BOT_NICK", "QuranBot"),
			AltNick:  getEnv("ALT_NICK", ""),
			Password: getEnv("BOT_PASSWORD", ""),
			Channels: getEnvAsList("BOT_CHANNELS", []string{"#Margalla"}),
			Owner:    getEnv("BOT_OWNER", ""),
		},
		Ai: AIConfig{
			Provider:       getEnv("AI_PROVIDER", "mistral"),
			APIURL:         getEnv("AI_API_URL", ""),
			APIKey:         getEnv("AI_API_KEY", ""),
			Model:          getEnv("AI_MODEL", "mistral-large-latest"),
			MaxAttempts:    getEnvAsInt("AI_MAX_ATTEMPTS", 10),
			AttemptTimeout: getEnvAsDuration("AI_ATTEMPT_TIMEOUT", 10*time.Second),
			MaxConcurrent:  int64(getEnvAsInt("AI_MAX_CONCURRENT", 5)),
			Temperature:    getEnvAsFloat("AI_TEMPERATURE", 0),
		},
		Bot: BotConfig{
			ChunkSize: getEnvAsInt("CHUNK_SIZE", 350),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", "quran.db"),
		},
		Otel: OtelConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "quran-irc-bot"),
		},
	}
}

// Validate reports every failing field at once.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			msgs := make([]string, len(fields))
			for i, f := range fields {
				msgs[i] = fmt.Sprintf("%s failed %s", f.Namespace(), f.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("10s") or plain seconds ("10").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string, fallback []string) []string {
	strValue, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(strValue, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
