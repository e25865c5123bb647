package models

import (
	"encoding/json"
	"time"
)

// AuditLog records state-changing actions. Writes are best-effort; a failed
// audit insert never rolls back the action it describes.
type AuditLog struct {
	AuditID    int             `gorm:"primaryKey;column:audit_id" json:"audit_id"`
	UserID     *int            `gorm:"column:user_id" json:"user_id,omitempty"`
	Action     string          `gorm:"column:action" json:"action"`
	TargetType *string         `gorm:"column:target_type" json:"target_type,omitempty"`
	TargetID   *string         `gorm:"column:target_id" json:"target_id,omitempty"`
	Details    json.RawMessage `gorm:"column:details;type:json" json:"details,omitempty"`
	IPAddress  *string         `gorm:"column:ip_address" json:"ip_address,omitempty"`
	CreateAt   *time.Time      `gorm:"column:create_at" json:"create_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
