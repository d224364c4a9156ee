package models

import "time"

const (
	RoleOwner  = "owner"
	RoleViewer = "viewer"
)

type User struct {
	ID                 uint      `gorm:"primaryKey"`
	Email              string    `gorm:"uniqueIndex;not null"`
	PasswordHash       string    `gorm:"not null"`
	Role               string    `gorm:"not null;default:owner"`
	MustChangePassword bool      `gorm:"not null;default:false"`
	HerdOwnerID        *uint     `gorm:"index"` // viewers only: whose herd they read
	CreatedAt          time.Time `gorm:"not null"`
}
