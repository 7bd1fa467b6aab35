package models

import "time"

// CacheRecord is one proximity-cache row: an opaque JSON cache entry stored
// under its cache key.
type CacheRecord struct {
	Key       string    `json:"key" gorm:"primaryKey;type:varchar(128)"`
	Value     string    `json:"value" gorm:"not null;type:text"`
	UpdatedAt time.Time `json:"updatedAt"`
}
