package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// OrderBySequence is the canonical turn order: timestamp, then insertion sequence.
func OrderBySequence(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("sequence ASC")
}
