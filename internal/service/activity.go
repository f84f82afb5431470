package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/matenweekend/api/internal/domain"
	"github.com/matenweekend/api/internal/repository"
)

var (
	ErrActivityNotFound  = repository.ErrActivityNotFound
	ErrInvalidTransition = repository.ErrInvalidTransition
	ErrActivityCompleted = repository.ErrActivityCompleted

	ErrValidation = errors.New("points and participant limit must not be negative")
)

// ActivityRepository is the storage surface the lifecycle needs. Atomic
// serializes all commands touching one activity (see repository.ActivityStore).
type ActivityRepository interface {
	Atomic(ctx context.Context, activityID uint, fn func(store repository.ActivityStore) error) error
	Create(ctx context.Context, activity domain.Activity) (domain.Activity, error)
	GetByID(ctx context.Context, id uint) (domain.Activity, error)
	List(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error)
}

// RankingCache is an optional derived-view cache. The ledger stays the source
// of truth; every ledger append invalidates the cached ranking.
type RankingCache interface {
	Get(ctx context.Context) ([]domain.RankingEntry, bool, error)
	Set(ctx context.Context, entries []domain.RankingEntry) error
	Invalidate(ctx context.Context) error
}

// ActivityService owns the activity status state machine. Entering or leaving
// the completed state settles or reverses point payouts within the same
// storage transaction as the status flip.
type ActivityService struct {
	repo  ActivityRepository
	cache RankingCache
}

func NewActivityService(repo ActivityRepository, cache RankingCache) *ActivityService {
	return &ActivityService{
		repo:  repo,
		cache: cache,
	}
}

// Create forces creator and status server-side; clients cannot supply either.
func (s *ActivityService) Create(ctx context.Context, activity domain.Activity, creatorID uint) (domain.Activity, error) {
	if activity.PointsParticipant < 0 || activity.PointsCreator < 0 || activity.MaxParticipants < 0 {
		return domain.Activity{}, ErrValidation
	}

	activity.CreatorID = creatorID
	activity.Status = domain.ActivityOpen

	created, err := s.repo.Create(ctx, activity)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ActivityService) GetByID(ctx context.Context, id uint) (domain.Activity, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return activity, nil
}

func (s *ActivityService) List(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error) {
	activities, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return activities, nil
}

// Complete moves an open activity to completed and settles its payouts.
// Completing an already-completed activity is a no-op success, so retries are
// safe and can never double-pay.
func (s *ActivityService) Complete(ctx context.Context, id uint) (domain.Activity, error) {
	var out domain.Activity

	err := s.repo.Atomic(ctx, id, func(store repository.ActivityStore) error {
		activity, err := store.GetActivity(ctx, id)
		if err != nil {
			return err
		}

		switch activity.Status {
		case domain.ActivityCompleted:
			out = activity
			return nil
		case domain.ActivityCancelled:
			return ErrInvalidTransition
		}

		if err = settleCompletion(ctx, store, activity); err != nil {
			return err
		}

		if err = store.UpdateActivityStatus(ctx, id, domain.ActivityCompleted); err != nil {
			return err
		}

		activity.Status = domain.ActivityCompleted
		out = activity

		return nil
	})
	if err != nil {
		return domain.Activity{}, fmt.Errorf("s.repo.Atomic -> %w", err)
	}

	s.invalidateRanking(ctx)

	return out, nil
}

// Cancel moves an open activity to cancelled. No ledger effect: points are
// only ever paid on completion.
func (s *ActivityService) Cancel(ctx context.Context, id uint) (domain.Activity, error) {
	var out domain.Activity

	err := s.repo.Atomic(ctx, id, func(store repository.ActivityStore) error {
		activity, err := store.GetActivity(ctx, id)
		if err != nil {
			return err
		}

		if activity.Status != domain.ActivityOpen {
			return ErrInvalidTransition
		}

		if err = store.UpdateActivityStatus(ctx, id, domain.ActivityCancelled); err != nil {
			return err
		}

		activity.Status = domain.ActivityCancelled
		out = activity

		return nil
	})
	if err != nil {
		return domain.Activity{}, fmt.Errorf("s.repo.Atomic -> %w", err)
	}

	return out, nil
}

// Reopen moves a completed or cancelled activity back to open. Leaving the
// completed state first appends the reversal entries, in the same transaction
// as the status flip, so no credited points stay outstanding once
// participation reopens.
func (s *ActivityService) Reopen(ctx context.Context, id uint) (domain.Activity, error) {
	var out domain.Activity

	err := s.repo.Atomic(ctx, id, func(store repository.ActivityStore) error {
		activity, err := store.GetActivity(ctx, id)
		if err != nil {
			return err
		}

		if activity.Status == domain.ActivityOpen {
			return ErrInvalidTransition
		}

		if activity.Status == domain.ActivityCompleted {
			if err = reverseCompletion(ctx, store, activity); err != nil {
				return err
			}
		}

		if err = store.UpdateActivityStatus(ctx, id, domain.ActivityOpen); err != nil {
			return err
		}

		activity.Status = domain.ActivityOpen
		out = activity

		return nil
	})
	if err != nil {
		return domain.Activity{}, fmt.Errorf("s.repo.Atomic -> %w", err)
	}

	s.invalidateRanking(ctx)

	return out, nil
}

// Delete removes an activity and its roster. Completed activities must be
// reopened first so their payouts are reversed; deleting them directly would
// orphan live ledger credits.
func (s *ActivityService) Delete(ctx context.Context, id uint) error {
	err := s.repo.Atomic(ctx, id, func(store repository.ActivityStore) error {
		activity, err := store.GetActivity(ctx, id)
		if err != nil {
			return err
		}

		if activity.Status == domain.ActivityCompleted {
			return ErrActivityCompleted
		}

		return store.DeleteActivity(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("s.repo.Atomic -> %w", err)
	}

	return nil
}

func (s *ActivityService) invalidateRanking(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		zap.L().Warn("failed to invalidate ranking cache", zap.Error(err))
	}
}
