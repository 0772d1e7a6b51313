package repository

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Драйвер SQLite, импортируем для регистрации
)

// Схема БД: одна таблица записей и связанная с ней таблица файлов.
// Воспроизводит исходную раскладку: errors (9 скалярных колонок + id),
// files (5 скалярных колонок + id, внешний ключ на errors).
const schema = `
CREATE TABLE IF NOT EXISTS errors (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL,
    severity    TEXT NOT NULL,
    category    TEXT,
    tags        TEXT,
    solution    TEXT,
    status      TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS files (
    id       TEXT PRIMARY KEY,
    error_id TEXT,
    filename TEXT NOT NULL,
    filepath TEXT NOT NULL,
    size     INTEGER NOT NULL,
    mimetype TEXT NOT NULL,
    FOREIGN KEY (error_id) REFERENCES errors(id) ON DELETE CASCADE
);`

// NewSQLiteDB открывает (при необходимости создавая) базу SQLite по указанному
// пути и инициализирует схему. busy_timeout не даёт конкурирующим запросам
// падать сразу при кратковременной блокировке файла БД.
func NewSQLiteDB(path string) (*sqlx.DB, error) {
	log.Printf("Открытие базы данных SQLite: %s", path)

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}

	if _, err = db.Exec(schema); err != nil {
		// Закрываем соединение в случае ошибки инициализации схемы
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Ошибка закрытия соединения с БД после неудачной инициализации схемы: %v", closeErr)
		}
		return nil, fmt.Errorf("ошибка инициализации схемы БД: %w", err)
	}

	log.Println("База данных SQLite успешно инициализирована.")
	return db, nil
}
