package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Порт по умолчанию для локального HTTP API.
	defaultServerPort = "8768"
	// Файл базы данных и директория загрузок по умолчанию — в рабочей директории.
	defaultDatabasePath = "errors.db"
	defaultUploadsDir   = "uploads"
	// Origin фронтенда по умолчанию.
	defaultCORSOrigin = "http://localhost:7641"

	// Переменные окружения.
	envServerPort   = "SERVER_PORT"
	envDatabasePath = "DATABASE_PATH"
	envUploadsDir   = "UPLOADS_DIR"
	envReportsDir   = "REPORTS_DIR"
	envStaticDir    = "STATIC_DIR"
	envCORSOrigin   = "CORS_ORIGIN"
)

// config хранит конфигурацию сервера.
type config struct {
	Port         string
	DatabasePath string
	UploadsDir   string
	ReportsDir   string
	StaticDir    string
	CORSOrigin   string
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
func parseFlags() (*config, error) {
	cfg := &config{}

	// Определяем флаги
	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт для запуска HTTP-сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.DatabasePath, "database-path", "",
		fmt.Sprintf("Путь к файлу базы данных SQLite (env: %s, default: %s)", envDatabasePath, defaultDatabasePath))
	flag.StringVar(&cfg.UploadsDir, "uploads-dir", "",
		fmt.Sprintf("Директория хранения загруженных файлов (env: %s, default: %s)", envUploadsDir, defaultUploadsDir))
	flag.StringVar(&cfg.ReportsDir, "reports-dir", "",
		fmt.Sprintf("Директория сохранения копий отчётов (env: %s, default: Desktop/Error Log Report)", envReportsDir))
	flag.StringVar(&cfg.StaticDir, "static-dir", "",
		fmt.Sprintf("Директория собранного фронтенда для раздачи (env: %s, опционально)", envStaticDir))
	flag.StringVar(&cfg.CORSOrigin, "cors-origin", "",
		fmt.Sprintf("Разрешённый CORS origin фронтенда (env: %s, default: %s)", envCORSOrigin, defaultCORSOrigin))

	// Парсим флаги
	flag.Parse()

	// Применяем переменные окружения, если флаги не заданы
	applyEnvDefault(&cfg.Port, envServerPort, defaultServerPort)
	applyEnvDefault(&cfg.DatabasePath, envDatabasePath, defaultDatabasePath)
	applyEnvDefault(&cfg.UploadsDir, envUploadsDir, defaultUploadsDir)
	applyEnvDefault(&cfg.StaticDir, envStaticDir, "")
	applyEnvDefault(&cfg.CORSOrigin, envCORSOrigin, defaultCORSOrigin)

	// Директория отчётов по умолчанию — на рабочем столе пользователя,
	// как в настольной версии приложения
	if cfg.ReportsDir == "" {
		if value, ok := os.LookupEnv(envReportsDir); ok {
			cfg.ReportsDir = value
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("не удалось определить домашнюю директорию для отчётов: %w", err)
			}
			cfg.ReportsDir = filepath.Join(home, "Desktop", "Error Log Report")
		}
	}

	return cfg, nil
}

// applyEnvDefault подставляет значение переменной окружения или значение
// по умолчанию, если флаг не был задан.
func applyEnvDefault(target *string, envKey, defaultVal string) {
	if *target != "" {
		return
	}
	if value, ok := os.LookupEnv(envKey); ok {
		*target = value
		return
	}
	*target = defaultVal
}
