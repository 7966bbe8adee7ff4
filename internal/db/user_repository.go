package db

import (
	"sort"

	"github.com/dmorhart/fieldforce/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByNormalizedEmail(email string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("lower(trim(email)) = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByNormalizedEmail(email string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("lower(trim(email)) = ?", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) CountUsers() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

// ListByTeam returns the flat relation set for one team, ordered by id so
// forest construction and repair planning are deterministic.
func (repo *UserRepository) ListByTeam(teamID uint) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.Where("team_id = ?", teamID).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepository) UpdateManagerID(userID uint, managerID *uint) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Update("manager_id", managerID).Error
}

// ApplyManagerAssignments persists a rebuild plan in a single transaction.
// Writes land in role-ascending order so a partial replay after a crash can
// never leave a junior pointing above a senior that was skipped.
func (repo *UserRepository) ApplyManagerAssignments(assignments []models.ManagerAssignment, roleByUser map[uint]string) error {
	ordered := make([]models.ManagerAssignment, len(assignments))
	copy(ordered, assignments)
	sort.SliceStable(ordered, func(i, j int) bool {
		rankI := models.RoleRank(roleByUser[ordered[i].UserID])
		rankJ := models.RoleRank(roleByUser[ordered[j].UserID])
		if rankI == rankJ {
			return ordered[i].UserID < ordered[j].UserID
		}
		return rankI < rankJ
	})

	return repo.database.Transaction(func(tx *gorm.DB) error {
		for _, assignment := range ordered {
			if err := tx.Model(&models.User{}).
				Where("id = ?", assignment.UserID).
				Update("manager_id", assignment.ManagerID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
