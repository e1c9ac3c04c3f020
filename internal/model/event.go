package model

import (
	"database/sql"
	"time"
)

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth    = "auth"
	EventCategoryContent = "content"
	EventCategoryMedia   = "media"
	EventCategoryConfig  = "config"
	EventCategorySystem  = "system"
	EventCategoryCache   = "cache"
)

// Event represents a system event log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	TokenID   sql.NullInt64
	Metadata  string // JSON string
	CreatedAt time.Time
}
