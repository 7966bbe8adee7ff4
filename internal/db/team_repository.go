package db

import (
	"github.com/dmorhart/fieldforce/internal/models"
	"gorm.io/gorm"
)

type TeamRepository struct {
	database *gorm.DB
}

func NewTeamRepository(database *gorm.DB) *TeamRepository {
	return &TeamRepository{database: database}
}

func (repo *TeamRepository) FindByID(teamID uint) (models.Team, error) {
	var team models.Team
	if err := repo.database.First(&team, teamID).Error; err != nil {
		return models.Team{}, err
	}
	return team, nil
}

func (repo *TeamRepository) List() ([]models.Team, error) {
	teams := make([]models.Team, 0)
	if err := repo.database.Order("id ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (repo *TeamRepository) Create(team *models.Team) error {
	return repo.database.Create(team).Error
}
