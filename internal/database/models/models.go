// Package models contains the database model definitions for the show
// library. The show document itself is stored as its canonical JSON; the
// columns only carry what the library UI lists and sorts by.
package models

import (
	"time"
)

// ShowRecord is one saved show document.
// Table: shows
type ShowRecord struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex"`
	Document  string    `gorm:"column:document"` // canonical show JSON
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ShowRecord) TableName() string { return "shows" }

// Setting represents a system setting.
// Table: settings
type Setting struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Key       string    `gorm:"column:key;uniqueIndex"`
	Value     string    `gorm:"column:value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Setting) TableName() string { return "settings" }
