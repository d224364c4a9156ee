package models

import "time"

const (
	SexMare     = "mare"
	SexStallion = "stallion"
	SexGelding  = "gelding"
)

type Horse struct {
	ID        uint       `gorm:"primaryKey"`
	PublicID  string     `gorm:"uniqueIndex;not null"`
	UserID    uint       `gorm:"not null;index"`
	Name      string     `gorm:"not null"`
	Breed     string
	Sex       string     `gorm:"not null"`
	BirthDate *time.Time `gorm:"type:date"`
	Color     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (horse Horse) IsMare() bool {
	return horse.Sex == SexMare
}

func (horse Horse) IsStallion() bool {
	return horse.Sex == SexStallion
}
