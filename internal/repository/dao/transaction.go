package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type PointTransaction struct {
	ID uint `gorm:"primaryKey"`

	UserID uint `gorm:"not null;index"`
	User   User `gorm:"foreignKey:UserID"`

	Amount int    `gorm:"not null"`
	Reason string `gorm:"not null"`
	Type   string `gorm:"not null"`

	ActivityID *uint     `gorm:"index"`
	Activity   *Activity `gorm:"foreignKey:ActivityID;constraint:OnDelete:SET NULL"`

	AwardedByID *uint
	AwardedBy   *User `gorm:"foreignKey:AwardedByID"`

	CreatedAt time.Time `gorm:"not null"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}

type TransactionDAO struct {
	db *gorm.DB
}

func NewTransactionDAO(db *gorm.DB) *TransactionDAO {
	return &TransactionDAO{
		db: db,
	}
}

// Insert appends one ledger entry. The ledger is append-only; there is no
// update or delete on this table.
func (d *TransactionDAO) Insert(ctx context.Context, transaction PointTransaction) (PointTransaction, error) {
	result := d.db.WithContext(ctx).Create(&transaction)
	if result.Error != nil {
		return PointTransaction{}, result.Error
	}

	return transaction, nil
}

// HasSettlement reports whether the activity has an outstanding, un-reversed
// settlement. Settlements and reversals are only ever appended in full sets
// under the activity lock, so outstanding means more settlement rows than
// reversal rows.
func (d *TransactionDAO) HasSettlement(ctx context.Context, activityID uint) (bool, error) {
	settlements, err := d.countByActivity(ctx, activityID, "creation", "participation")
	if err != nil {
		return false, err
	}

	reversals, err := d.countByActivity(ctx, activityID, "deduction")
	if err != nil {
		return false, err
	}

	return settlements > reversals, nil
}

// ListSettlementByActivity returns the outstanding settlement entries tied to
// the activity, oldest first. These are the rows a reopen must reverse.
// Settlement rows that earlier reopens already reversed are skipped; reversals
// always cover the oldest un-reversed set first.
func (d *TransactionDAO) ListSettlementByActivity(ctx context.Context, activityID uint) ([]PointTransaction, error) {
	var transactions []PointTransaction

	result := d.db.WithContext(ctx).
		Where("activity_id = ? AND type IN ?", activityID, []string{"creation", "participation"}).
		Order("id ASC").
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	reversals, err := d.countByActivity(ctx, activityID, "deduction")
	if err != nil {
		return nil, err
	}

	if int(reversals) >= len(transactions) {
		return nil, nil
	}

	return transactions[reversals:], nil
}

func (d *TransactionDAO) ListAll(ctx context.Context) ([]PointTransaction, error) {
	var transactions []PointTransaction

	result := d.db.WithContext(ctx).Order("id ASC").Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

func (d *TransactionDAO) ListByUser(ctx context.Context, userID uint) ([]PointTransaction, error) {
	var transactions []PointTransaction

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

func (d *TransactionDAO) countByActivity(ctx context.Context, activityID uint, types ...string) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&PointTransaction{}).
		Where("activity_id = ? AND type IN ?", activityID, types).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
