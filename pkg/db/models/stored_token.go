package models

import "time"

// StoredToken persists one credential key for a profile in the durable token scope.
type StoredToken struct {
	Profile   string    `gorm:"column:profile;primaryKey;size:128"`
	Key       string    `gorm:"column:token_key;primaryKey;size:64"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StoredToken) TableName() string { return "stored_tokens" }
