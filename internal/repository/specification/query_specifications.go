package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByNick filters query history by issuer
type ByNick struct {
	Nick string
}

func (s ByNick) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(nick) = LOWER(?)", s.Nick)
}

// ByChannel filters query history by reply target
type ByChannel struct {
	Channel string
}

func (s ByChannel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("channel = ?", s.Channel)
}

// BySuccess filters by outcome
type BySuccess struct {
	Success bool
}

func (s BySuccess) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("success = ?", s.Success)
}

// CreatedSince keeps records at or after a point in time
type CreatedSince struct {
	Since time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Since)
}

// Pagination windows the newest-first history
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}
