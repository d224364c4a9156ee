package models

import "time"

const (
	OutcomeOngoing = "ongoing"
	OutcomeFoaled  = "foaled"
	OutcomeLost    = "lost"
)

type Pregnancy struct {
	ID             uint       `gorm:"primaryKey"`
	UserID         uint       `gorm:"not null;index"`
	MareID         uint       `gorm:"not null;index"`
	StallionID     *uint      `gorm:"index"`
	SireName       string
	ConceptionDate time.Time  `gorm:"type:date;not null"`
	Outcome        string     `gorm:"not null;default:ongoing"`
	FoalingDate    *time.Time `gorm:"type:date"`
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Mare     Horse  `gorm:"foreignKey:MareID"`
	Stallion *Horse `gorm:"foreignKey:StallionID"`
}

func (pregnancy Pregnancy) IsOngoing() bool {
	return pregnancy.Outcome == OutcomeOngoing
}

// PregnancyFilter narrows list queries. Zero values match everything; To is exclusive.
type PregnancyFilter struct {
	MareID  uint
	Outcome string
	From    *time.Time
	To      *time.Time
}
