package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/matenweekend/api/internal/domain"
	"github.com/matenweekend/api/internal/repository"
)

type LedgerRepository interface {
	Append(ctx context.Context, transaction domain.PointTransaction) (domain.PointTransaction, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.PointTransaction, error)
}

// LedgerService serves the personal transaction history and manual awards.
// Settlement and reversal are driven by the activity lifecycle and live in
// settleCompletion / reverseCompletion below.
type LedgerService struct {
	repo  LedgerRepository
	users UserRepository
	cache RankingCache
}

func NewLedgerService(repo LedgerRepository, users UserRepository, cache RankingCache) *LedgerService {
	return &LedgerService{
		repo:  repo,
		users: users,
		cache: cache,
	}
}

// AwardManual appends a direct credit or debit unrelated to any activity.
// There is deliberately no idempotency guard: each call is a distinct entry.
func (s *LedgerService) AwardManual(ctx context.Context, userID uint, amount int, reason string, awardedBy uint) (domain.PointTransaction, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.PointTransaction{}, ErrUserNotFound
		}

		return domain.PointTransaction{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	transactionType := domain.TransactionBonus
	if amount < 0 {
		transactionType = domain.TransactionDeduction
	}

	created, err := s.repo.Append(ctx, domain.PointTransaction{
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		Type:      transactionType,
		AwardedBy: &awardedBy,
	})
	if err != nil {
		return domain.PointTransaction{}, fmt.Errorf("s.repo.Append -> %w", err)
	}

	if s.cache != nil {
		if err = s.cache.Invalidate(ctx); err != nil {
			zap.L().Warn("failed to invalidate ranking cache", zap.Error(err))
		}
	}

	return created, nil
}

func (s *LedgerService) UserTransactions(ctx context.Context, userID uint) ([]domain.PointTransaction, error) {
	transactions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByUser -> %w", err)
	}

	return transactions, nil
}

// settleCompletion converts a completion edge into ledger entries. An
// outstanding (un-reversed) settlement marks the activity as already paid
// out; requests that find one return without effect, so a re-complete after
// a reopen settles again while a duplicate complete does not. Runs inside
// the caller's Atomic scope.
func settleCompletion(ctx context.Context, store repository.ActivityStore, activity domain.Activity) error {
	settled, err := store.HasSettlement(ctx, activity.ID)
	if err != nil {
		return err
	}
	if settled {
		return nil
	}

	activityID := activity.ID

	if activity.PointsCreator > 0 {
		_, err = store.InsertTransaction(ctx, domain.PointTransaction{
			UserID:     activity.CreatorID,
			Amount:     activity.PointsCreator,
			Reason:     "Created: " + activity.Title,
			ActivityID: &activityID,
			Type:       domain.TransactionCreation,
		})
		if err != nil {
			return err
		}
	}

	if activity.PointsParticipant > 0 {
		participations, err := store.ListParticipations(ctx, activity.ID)
		if err != nil {
			return err
		}

		for _, p := range participations {
			// The creator does not collect participation points on top of
			// their creation reward.
			if p.UserID == activity.CreatorID {
				continue
			}

			_, err = store.InsertTransaction(ctx, domain.PointTransaction{
				UserID:     p.UserID,
				Amount:     activity.PointsParticipant,
				Reason:     "Participated: " + activity.Title,
				ActivityID: &activityID,
				Type:       domain.TransactionParticipation,
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// reverseCompletion appends an equal-and-opposite deduction for every
// settlement entry of the activity. Originals are never touched; the ledger
// stays append-only and the net effect is reconstructed by summation.
func reverseCompletion(ctx context.Context, store repository.ActivityStore, activity domain.Activity) error {
	settlement, err := store.ListSettlement(ctx, activity.ID)
	if err != nil {
		return err
	}

	reason := "Activity Reopened: " + activity.Title
	for _, transaction := range settlement {
		if _, err = store.InsertTransaction(ctx, transaction.Reversal(reason)); err != nil {
			return err
		}
	}

	return nil
}
