package persistence

import (
	"errors"

	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// findPage counts the rows matched by query and loads one page of them.
// preload, when set, is applied to the page query only.
func findPage[T any](query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string, preload ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := paginate(query, filter, allowed, defaultField)
	for _, p := range preload {
		page = p(page)
	}
	var rows []T
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// firstOrNotFound loads the first row matched by query into dest
func firstOrNotFound(query *gorm.DB, dest interface{}) error {
	if err := query.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}
