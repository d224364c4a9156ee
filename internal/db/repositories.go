package db

import "gorm.io/gorm"

type Repositories struct {
	Users       *UserRepository
	Horses      *HorseRepository
	Pregnancies *PregnancyRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(database),
		Horses:      NewHorseRepository(database),
		Pregnancies: NewPregnancyRepository(database),
	}
}
