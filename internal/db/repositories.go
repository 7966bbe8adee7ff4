package db

import "gorm.io/gorm"

type Repositories struct {
	Users      *UserRepository
	Teams      *TeamRepository
	Activities *ActivityRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(database),
		Teams:      NewTeamRepository(database),
		Activities: NewActivityRepository(database),
	}
}
