package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/maynagashev/errorlog/internal/handlers"
	"github.com/maynagashev/errorlog/internal/repository"
	"github.com/maynagashev/errorlog/internal/services"
	"github.com/maynagashev/errorlog/internal/storage"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 60 * time.Second // Генерация отчёта с изображениями может быть небыстрой
	defaultIdleTimeout  = 30 * time.Second
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db            *sqlx.DB
	recordHandler *handlers.RecordHandler
	exportHandler *handlers.ExportHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера журнала ошибок...")

	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	// Инициализация зависимостей
	deps, err := setupDependencies(cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	// Отложенное закрытие соединения с БД
	defer func() {
		if deps.db != nil {
			if closeErr := deps.db.Close(); closeErr != nil {
				log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
			}
		}
	}()

	// Настройка роутера
	r := setupRouter(cfg, deps.recordHandler, deps.exportHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	log.Printf("Запуск HTTP-сервера на порту %s...", cfg.Port)
	if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска HTTP-сервера: %w", err)
	}
	return nil
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(cfg *config) (*dependencies, error) {
	deps := &dependencies{}
	var err error

	// 1. Открытие БД SQLite
	deps.db, err = repository.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}

	// 2. Инициализация блоб-хранилища на диске
	blobStore, err := storage.NewDiskStore(cfg.UploadsDir)
	if err != nil {
		// Закрываем соединение с БД перед выходом
		if dbCloseErr := deps.db.Close(); dbCloseErr != nil {
			log.Printf("Ошибка закрытия соединения с БД при ошибке хранилища: %v", dbCloseErr)
		}
		return nil, fmt.Errorf("ошибка инициализации хранилища файлов: %w", err)
	}

	// 3. Создание репозиториев
	recordRepo := repository.NewSQLiteRecordRepository(deps.db)
	attachmentRepo := repository.NewSQLiteAttachmentRepository(deps.db)

	// 4. Создание сервисов
	recordService := services.NewRecordService(recordRepo, attachmentRepo, blobStore)
	reportService := services.NewReportService(recordRepo, attachmentRepo, blobStore, cfg.ReportsDir)

	// 5. Создание обработчиков
	deps.recordHandler = handlers.NewRecordHandler(recordService)
	deps.exportHandler = handlers.NewExportHandler(reportService)

	return deps, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(cfg *config, recordHandler *handlers.RecordHandler, exportHandler *handlers.ExportHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// CORS для локального фронтенда
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// --- Маршруты --- //
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/errors", func(r chi.Router) {
			r.Post("/", recordHandler.Create)
			r.Get("/", recordHandler.List)
			r.Get("/{errorID}", recordHandler.Get)
			r.Put("/{errorID}", recordHandler.Update)
			r.Delete("/{errorID}", recordHandler.Delete)
		})
		r.Get("/files/{fileID}", recordHandler.GetFile)
		r.Get("/export/word", exportHandler.ExportWord)
	})

	// Раздача собранного фронтенда, если директория задана и существует
	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err == nil {
			log.Printf("Раздача статики из %s", cfg.StaticDir)
			r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
		} else {
			log.Printf("Директория статики %s не найдена, раздача отключена", cfg.StaticDir)
		}
	}

	return r
}
