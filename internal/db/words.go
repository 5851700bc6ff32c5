package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveWords inserts texts into the words table, skipping ones already
// present, and reports how many rows are new.
func SaveWords(conn *gorm.DB, texts []string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	inserted := 0
	for _, text := range texts {
		entry := Word{Text: text}
		res := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if res.Error != nil {
			return inserted, res.Error
		}
		inserted += int(res.RowsAffected)
	}
	return inserted, nil
}

// ListWords returns the whole vocabulary in insertion order.
func ListWords(conn *gorm.DB) ([]string, error) {
	var texts []string
	if err := conn.Model(&Word{}).Order("id").Pluck("text", &texts).Error; err != nil {
		return nil, err
	}
	return texts, nil
}
