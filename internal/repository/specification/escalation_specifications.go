package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByUserId filters escalations by the asking user.
type ByUserId struct {
	UserId string
}

func (s ByUserId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserId)
}

// BySessionId filters escalations by the agent session they came from.
type BySessionId struct {
	SessionId string
}

func (s BySessionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionId)
}

// CreatedSince filters records created at or after a point in time.
type CreatedSince struct {
	Since time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Since)
}
