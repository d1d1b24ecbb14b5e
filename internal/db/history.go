package db

import (
	"context"
	"fmt"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// RecordTranslation stores one served request.
func (p *Pool) RecordTranslation(ctx context.Context, record *TranslationRecord) error {
	if p == nil || p.gdb == nil {
		return fmt.Errorf("database pool is not initialized")
	}
	if record == nil {
		return fmt.Errorf("translation record is nil")
	}
	if err := p.gdb.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("insert translation record: %w", err)
	}
	return nil
}

// RecentTranslations returns the newest records first.
func (p *Pool) RecentTranslations(ctx context.Context, limit int) ([]TranslationRecord, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	var rows []TranslationRecord
	err := p.gdb.WithContext(ctx).
		Order("created_at DESC").
		Order("translation_id DESC").
		Limit(ClampHistoryLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query translation history: %w", err)
	}
	return rows, nil
}

func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return min(limit, MaxHistoryLimit)
}
