package models

// Attachment представляет метаданные одного загруженного файла,
// привязанного к записи журнала. Сами байты лежат в блоб-хранилище
// по ключу StoragePath (сгенерированное имя, не совпадает с Filename).
type Attachment struct {
	ID          string `db:"id"       json:"id"`
	RecordID    string `db:"error_id" json:"error_id"`
	Filename    string `db:"filename" json:"filename"` // исходное имя файла, только для отображения
	StoragePath string `db:"filepath" json:"filepath"`
	Size        int64  `db:"size"     json:"size"`
	MimeType    string `db:"mimetype" json:"mimetype"`
}
