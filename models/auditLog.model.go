package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records a state change made by an admin, the Telegram operator or the bot.
type AuditLog struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	Actor      string         `gorm:"type:varchar(100);not null" json:"actor"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string         `gorm:"type:varchar(50);not null" json:"entityType"`
	EntityID   uint           `gorm:"index" json:"entityId"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
