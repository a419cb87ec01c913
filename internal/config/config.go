package config

import (
	"fmt"
	"log"
	"os"

	"github.com/consulthub/scheduler-api/internal/model"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	Environment   string
	HTTPAddr      string
	MigrationsDir string

	// Окно отдыха: слоты не могут начинаться или заканчиваться внутри него
	RestStart model.TimeOfDay
	RestEnd   model.TimeOfDay
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		Environment:   os.Getenv("ENV"),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
	}

	// Дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}

	// Обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	var err error
	if cfg.RestStart, err = parseTimeEnv("REST_START", "00:00"); err != nil {
		return nil, err
	}
	if cfg.RestEnd, err = parseTimeEnv("REST_END", "08:00"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseTimeEnv(key, fallback string) (model.TimeOfDay, error) {
	value := os.Getenv(key)
	if value == "" {
		value = fallback
	}

	t, err := model.ParseTimeOfDay(value)
	if err != nil {
		return model.TimeOfDay{}, fmt.Errorf("invalid %s: %w", key, err)
	}

	return t, nil
}
