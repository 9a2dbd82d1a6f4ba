package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config — конфигурация приложения, читается из переменных окружения.
type Config struct {
	DatabaseURL string
	ServerPort  string

	// Location — часовой пояс клуба. Расписание шаблонов и окна рассылки
	// считаются в нём, а не в поясе сервера.
	Location *time.Location

	PollInterval     time.Duration
	ScheduleInterval time.Duration

	DefaultTeamSize int
	DefaultKFactor  float64
	TeamStrategy    string

	PushTimeout time.Duration
}

// Load читает конфигурацию. Файл .env опционален: в контейнере переменные
// приходят напрямую из окружения.
func Load(logger *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, reading environment directly")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	tzName := getEnv("CLUB_TIMEZONE", "Pacific/Auckland")
	location, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid CLUB_TIMEZONE %q: %w", tzName, err)
	}

	pollMinutes, err := getEnvInt("POLL_INTERVAL_MINUTES", 10)
	if err != nil {
		return nil, err
	}
	scheduleMinutes, err := getEnvInt("SCHEDULE_INTERVAL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	teamSize, err := getEnvInt("DEFAULT_TEAM_SIZE", 5)
	if err != nil {
		return nil, err
	}
	kFactor, err := getEnvFloat("DEFAULT_K_FACTOR", 24)
	if err != nil {
		return nil, err
	}
	pushTimeoutSeconds, err := getEnvInt("PUSH_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:      databaseURL,
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		Location:         location,
		PollInterval:     time.Duration(pollMinutes) * time.Minute,
		ScheduleInterval: time.Duration(scheduleMinutes) * time.Minute,
		DefaultTeamSize:  teamSize,
		DefaultKFactor:   kFactor,
		TeamStrategy:     getEnv("TEAM_STRATEGY", "balanced"),
		PushTimeout:      time.Duration(pushTimeoutSeconds) * time.Second,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return parsed, nil
}
