package repository

import (
	"context"
	"fmt"

	"github.com/matenweekend/api/internal/domain"
	"github.com/matenweekend/api/internal/repository/dao"
)

// LedgerRepository covers the ledger reads and the appends that need no
// per-activity lock (manual awards). Settlement and reversal writes go through
// ActivityRepository.Atomic instead.
type LedgerRepository struct {
	dao *dao.TransactionDAO
}

func NewLedgerRepository(transactionDAO *dao.TransactionDAO) *LedgerRepository {
	return &LedgerRepository{
		dao: transactionDAO,
	}
}

func (r *LedgerRepository) Append(ctx context.Context, transaction domain.PointTransaction) (domain.PointTransaction, error) {
	created, err := r.dao.Insert(ctx, transactionDomainToDAO(transaction))
	if err != nil {
		return domain.PointTransaction{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return transactionDAOToDomain(created), nil
}

// ListAll returns every ledger entry in insertion order, the scan order the
// ranking fold depends on.
func (r *LedgerRepository) ListAll(ctx context.Context) ([]domain.PointTransaction, error) {
	found, err := r.dao.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListAll -> %w", err)
	}

	return transactionsDAOToDomain(found), nil
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID uint) ([]domain.PointTransaction, error) {
	found, err := r.dao.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByUser -> %w", err)
	}

	return transactionsDAOToDomain(found), nil
}

func transactionsDAOToDomain(found []dao.PointTransaction) []domain.PointTransaction {
	transactions := make([]domain.PointTransaction, len(found))
	for i, t := range found {
		transactions[i] = transactionDAOToDomain(t)
	}

	return transactions
}

func transactionDomainToDAO(t domain.PointTransaction) dao.PointTransaction {
	return dao.PointTransaction{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount,
		Reason:      t.Reason,
		Type:        string(t.Type),
		ActivityID:  t.ActivityID,
		AwardedByID: t.AwardedBy,
		CreatedAt:   t.CreatedAt,
	}
}

func transactionDAOToDomain(t dao.PointTransaction) domain.PointTransaction {
	return domain.PointTransaction{
		ID:         t.ID,
		UserID:     t.UserID,
		Amount:     t.Amount,
		Reason:     t.Reason,
		Type:       domain.TransactionType(t.Type),
		ActivityID: t.ActivityID,
		AwardedBy:  t.AwardedByID,
		CreatedAt:  t.CreatedAt,
	}
}
