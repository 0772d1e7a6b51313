package models_test

import (
	"testing"

	"github.com/maynagashev/errorlog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidSeverity(t *testing.T) {
	tests := []struct {
		name     string
		severity string
		want     bool
	}{
		{name: "critical допустимо", severity: "critical", want: true},
		{name: "high допустимо", severity: "high", want: true},
		{name: "medium допустимо", severity: "medium", want: true},
		{name: "low допустимо", severity: "low", want: true},
		{name: "Пустое значение недопустимо", severity: "", want: false},
		{name: "Произвольное значение недопустимо", severity: "urgent", want: false},
		{name: "Регистр имеет значение", severity: "Critical", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.IsValidSeverity(tt.severity))
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{name: "open допустимо", status: "open", want: true},
		{name: "in-progress допустимо", status: "in-progress", want: true},
		{name: "resolved допустимо", status: "resolved", want: true},
		{name: "Пустое значение недопустимо", status: "", want: false},
		{name: "Произвольное значение недопустимо", status: "closed", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.IsValidStatus(tt.status))
		})
	}
}

func TestTagListValue(t *testing.T) {
	tests := []struct {
		name string
		tags models.TagList
		want string
	}{
		{name: "Список тегов", tags: models.TagList{"auth", "crash"}, want: `["auth","crash"]`},
		{name: "Пустой список", tags: models.TagList{}, want: `[]`},
		{name: "nil сериализуется как пустой список", tags: nil, want: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := tt.tags.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.want, value)
		})
	}
}

func TestTagListScan(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		want    models.TagList
		wantErr bool
	}{
		{name: "JSON-массив строкой", src: `["auth","crash"]`, want: models.TagList{"auth", "crash"}},
		{name: "JSON-массив байтами", src: []byte(`["db"]`), want: models.TagList{"db"}},
		{name: "Пустой массив", src: `[]`, want: models.TagList{}},
		{name: "NULL трактуется как пустой список", src: nil, want: models.TagList{}},
		{name: "Пустая строка трактуется как пустой список", src: ``, want: models.TagList{}},
		{name: "JSON null трактуется как пустой список", src: `null`, want: models.TagList{}},
		{name: "Некорректный JSON", src: `not-json`, wantErr: true},
		{name: "Неподдерживаемый тип колонки", src: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags models.TagList
			err := tags.Scan(tt.src)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tags)
		})
	}
}

func TestTagListRoundTrip(t *testing.T) {
	// Порядок тегов сохраняется при сериализации и обратном разборе
	original := models.TagList{"auth", "crash", "db"}

	value, err := original.Value()
	require.NoError(t, err)

	var restored models.TagList
	require.NoError(t, restored.Scan(value))
	assert.Equal(t, original, restored)
}
