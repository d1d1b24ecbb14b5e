package db

import "time"

// TranslationRecord maps mts.translations: one row per served request. Only
// sizes are kept, never the texts themselves.
type TranslationRecord struct {
	TranslationID int64     `gorm:"column:translation_id;primaryKey;autoIncrement" json:"translation_id"`
	RequestID     string    `gorm:"column:request_id;type:text" json:"request_id,omitempty"`
	SourceLang    string    `gorm:"column:source_lang;type:text;not null;index:idx_translations_pair" json:"source_lang"`
	TargetLang    string    `gorm:"column:target_lang;type:text;not null;index:idx_translations_pair" json:"target_lang"`
	Route         string    `gorm:"column:route;type:text;not null" json:"route"`
	Hops          string    `gorm:"column:hops;type:text;not null" json:"hops"`
	Detected      bool      `gorm:"column:detected;not null;default:false" json:"detected"`
	SourceChars   int       `gorm:"column:source_chars;type:integer;not null" json:"source_chars"`
	ResultChars   int       `gorm:"column:result_chars;type:integer;not null" json:"result_chars"`
	LatencyMS     int64     `gorm:"column:latency_ms;type:bigint;not null" json:"latency_ms"`
	ErrorMessage  *string   `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now();index" json:"created_at"`
}

func (TranslationRecord) TableName() string { return "mts.translations" }

func autoMigrateModels() []any {
	return []any{
		&TranslationRecord{},
	}
}
