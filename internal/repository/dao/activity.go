package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrActivityNotFound  = errors.New("activity not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrActivityNotOpen   = errors.New("activity is not open")
	ErrActivityFull      = errors.New("activity is full")
	ErrActivityCompleted = errors.New("activity is already completed")
)

type Activity struct {
	ID uint `gorm:"primaryKey"`

	Title       string `gorm:"not null"`
	Description string
	StartTime   time.Time `gorm:"not null"`
	Status      string    `gorm:"not null;default:open;index"`

	PointsParticipant int `gorm:"not null;default:0"`
	PointsCreator     int `gorm:"not null;default:0"`
	MaxParticipants   int `gorm:"not null;default:0"` // 0 = unlimited

	CreatorID uint `gorm:"not null;index"`
	Creator   User `gorm:"foreignKey:CreatorID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type ActivityDAO struct {
	db *gorm.DB
}

func NewActivityDAO(db *gorm.DB) *ActivityDAO {
	return &ActivityDAO{
		db: db,
	}
}

// Transaction runs fn inside one database transaction with all three DAOs
// bound to it, so a lifecycle edge and its ledger writes commit or roll back
// as a unit.
func (d *ActivityDAO) Transaction(ctx context.Context, fn func(aDAO *ActivityDAO, pDAO *ParticipationDAO, tDAO *TransactionDAO) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewActivityDAO(tx), NewParticipationDAO(tx), NewTransactionDAO(tx))
	})
}

// LockByID loads the activity under a row-level write lock. Inside a
// transaction this serializes all lifecycle and participation commands for
// that activity.
func (d *ActivityDAO) LockByID(ctx context.Context, id uint) (Activity, error) {
	var activity Activity

	result := d.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&activity, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Activity{}, ErrActivityNotFound
		}

		return Activity{}, result.Error
	}

	return activity, nil
}

func (d *ActivityDAO) Insert(ctx context.Context, activity Activity) (Activity, error) {
	result := d.db.WithContext(ctx).Create(&activity)
	if result.Error != nil {
		return Activity{}, result.Error
	}

	return activity, nil
}

func (d *ActivityDAO) FindByID(ctx context.Context, id uint) (Activity, error) {
	var activity Activity

	result := d.db.WithContext(ctx).Preload("Creator").First(&activity, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Activity{}, ErrActivityNotFound
		}

		return Activity{}, result.Error
	}

	return activity, nil
}

// List returns activities newest-start-first. Filters mirror the listing views:
// "upcoming" keeps open activities starting after now, "completed" keeps
// completed and cancelled ones, anything else returns everything.
func (d *ActivityDAO) List(ctx context.Context, filter string) ([]Activity, error) {
	query := d.db.WithContext(ctx).Preload("Creator").Order("start_time DESC")

	switch filter {
	case "upcoming":
		query = query.Where("start_time > ? AND status = ?", time.Now(), "open")
	case "completed":
		query = query.Where("status IN ?", []string{"completed", "cancelled"})
	}

	var activities []Activity
	if result := query.Find(&activities); result.Error != nil {
		return nil, result.Error
	}

	return activities, nil
}

func (d *ActivityDAO) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := d.db.WithContext(ctx).
		Model(&Activity{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrActivityNotFound
	}

	return nil
}

func (d *ActivityDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Activity{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrActivityNotFound
	}

	return nil
}
