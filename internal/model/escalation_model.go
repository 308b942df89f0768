package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Escalation struct {
	Id             uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         string                      `gorm:"type:text;not null;index"`
	SessionId      string                      `gorm:"type:text;not null;index"`
	Question       string                      `gorm:"type:text;not null"`
	ConversationId string                      `gorm:"type:text"`
	SignalCount    int                         `gorm:"not null"`
	Sources        datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Confidence     string                      `gorm:"type:text"`
	DecisionReason string                      `gorm:"type:text"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime"`
}

func (Escalation) TableName() string {
	return "escalations"
}
