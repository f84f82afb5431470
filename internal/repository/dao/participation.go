package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAlreadyJoined         = errors.New("user already joined this activity")
	ErrNotJoined             = errors.New("user has not joined this activity")
	ErrParticipationNotFound = errors.New("participation not found")
)

type Participation struct {
	ID uint `gorm:"primaryKey"`

	ActivityID uint     `gorm:"not null;uniqueIndex:uni_participations_activity_user"`
	Activity   Activity `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE"`
	UserID     uint     `gorm:"not null;uniqueIndex:uni_participations_activity_user;index"`
	User       User     `gorm:"foreignKey:UserID"`

	CreatedAt time.Time `gorm:"not null"`
}

type ParticipationDAO struct {
	db *gorm.DB
}

func NewParticipationDAO(db *gorm.DB) *ParticipationDAO {
	return &ParticipationDAO{
		db: db,
	}
}

func (d *ParticipationDAO) Insert(ctx context.Context, participation Participation) (Participation, error) {
	result := d.db.WithContext(ctx).Create(&participation)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, "uni_participations_activity_user") {
			return Participation{}, ErrAlreadyJoined
		}

		return Participation{}, result.Error
	}

	return participation, nil
}

func (d *ParticipationDAO) FindByID(ctx context.Context, id uint) (Participation, error) {
	var participation Participation

	result := d.db.WithContext(ctx).First(&participation, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participation{}, ErrParticipationNotFound
		}

		return Participation{}, result.Error
	}

	return participation, nil
}

func (d *ParticipationDAO) Find(ctx context.Context, activityID, userID uint) (Participation, error) {
	var participation Participation

	result := d.db.WithContext(ctx).
		First(&participation, "activity_id = ? AND user_id = ?", activityID, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participation{}, ErrNotJoined
		}

		return Participation{}, result.Error
	}

	return participation, nil
}

func (d *ParticipationDAO) CountByActivity(ctx context.Context, activityID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Participation{}).
		Where("activity_id = ?", activityID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *ParticipationDAO) ListByActivity(ctx context.Context, activityID uint) ([]Participation, error) {
	var participations []Participation

	result := d.db.WithContext(ctx).
		Preload("User").
		Where("activity_id = ?", activityID).
		Order("created_at ASC").
		Find(&participations)
	if result.Error != nil {
		return nil, result.Error
	}

	return participations, nil
}

func (d *ParticipationDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Participation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipationNotFound
	}

	return nil
}
