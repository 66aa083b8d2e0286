package model

import "time"

// AuditLog records admin mutations (poll deletions, role changes, user
// removals) for the admin audit page.
type AuditLog struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId     int       `json:"userId" gorm:"index"`
	Username   string    `json:"username"`
	Action     string    `json:"action" gorm:"index"`   // CREATE, DELETE, PROMOTE, DEMOTE, LOGIN
	Resource   string    `json:"resource" gorm:"index"` // poll, user
	ResourceId int       `json:"resourceId"`
	IP         string    `json:"ip"`
	Details    string    `json:"details"` // JSON string with additional details
	Timestamp  time.Time `json:"timestamp" gorm:"index"`
}
