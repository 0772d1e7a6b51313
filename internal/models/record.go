package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Допустимые значения severity.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Допустимые значения status.
const (
	StatusOpen       = "open"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
)

// ValidSeverities — фиксированный набор допустимых значений severity.
var ValidSeverities = map[string]bool{
	SeverityCritical: true,
	SeverityHigh:     true,
	SeverityMedium:   true,
	SeverityLow:      true,
}

// ValidStatuses — фиксированный набор допустимых значений status.
var ValidStatuses = map[string]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusResolved:   true,
}

// IsValidSeverity проверяет, входит ли значение в набор допустимых severity.
func IsValidSeverity(severity string) bool {
	return ValidSeverities[severity]
}

// IsValidStatus проверяет, входит ли значение в набор допустимых status.
func IsValidStatus(status string) bool {
	return ValidStatuses[status]
}

// TagList — упорядоченный список тегов записи.
// В БД хранится одной текстовой колонкой в формате JSON-массива
// (совместимо с исходной схемой: колонка tags таблицы errors).
type TagList []string

// Value сериализует список тегов в JSON-текст для записи в БД.
// Пустой или nil список сохраняется как "[]".
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации тегов: %w", err)
	}
	return string(data), nil
}

// Scan десериализует JSON-текст из БД в список тегов.
// NULL и пустая строка трактуются как пустой список.
func (t *TagList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*t = TagList{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("неподдерживаемый тип колонки tags: %T", src)
	}
	if len(data) == 0 {
		*t = TagList{}
		return nil
	}
	if err := json.Unmarshal(data, t); err != nil {
		return fmt.Errorf("ошибка разбора тегов: %w", err)
	}
	if *t == nil {
		*t = TagList{}
	}
	return nil
}

// Record представляет одну запись журнала ошибок.
// Владеет своими вложениями: удаление записи каскадно удаляет вложения.
type Record struct {
	ID          string       `db:"id"          json:"id"`
	Title       string       `db:"title"       json:"title"`
	Description string       `db:"description" json:"description"`
	Severity    string       `db:"severity"    json:"severity"`
	Category    *string      `db:"category"    json:"category"` // может быть NULL
	Tags        TagList      `db:"tags"        json:"tags"`
	Solution    *string      `db:"solution"    json:"solution"` // может быть NULL
	Status      string       `db:"status"      json:"status"`
	CreatedAt   time.Time    `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"  json:"updated_at"`
	Files       []Attachment `db:"-"           json:"files"`
}
