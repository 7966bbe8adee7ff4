package db

import (
	"time"

	"github.com/dmorhart/fieldforce/internal/models"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	database *gorm.DB
}

func NewActivityRepository(database *gorm.DB) *ActivityRepository {
	return &ActivityRepository{database: database}
}

// ListByUsersInRange returns every record for the given users whose date
// falls inside the inclusive [from, to] window. Dates are stored at
// midnight, so the filter is half-open on the day after to.
func (repo *ActivityRepository) ListByUsersInRange(userIDs []uint, from time.Time, to time.Time) ([]models.ActivityRecord, error) {
	records := make([]models.ActivityRecord, 0)
	if len(userIDs) == 0 {
		return records, nil
	}
	if err := repo.database.
		Where("user_id IN ? AND date >= ? AND date < ?", userIDs, from, to.AddDate(0, 0, 1)).
		Order("date ASC, user_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *ActivityRepository) ListByUserInRange(userID uint, from time.Time, to time.Time) ([]models.ActivityRecord, error) {
	return repo.ListByUsersInRange([]uint{userID}, from, to)
}

func (repo *ActivityRepository) FindByUserAndDay(userID uint, dayStart time.Time) (models.ActivityRecord, bool, error) {
	entry := models.ActivityRecord{}
	result := repo.database.
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStart, dayStart.AddDate(0, 0, 1)).
		Order("date DESC, id DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.ActivityRecord{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.ActivityRecord{}, false, nil
	}
	return entry, true, nil
}

func (repo *ActivityRepository) Create(entry *models.ActivityRecord) error {
	return repo.database.Create(entry).Error
}

func (repo *ActivityRepository) Save(entry *models.ActivityRecord) error {
	return repo.database.Save(entry).Error
}
