package service

import (
	"context"
	"fmt"

	"github.com/matenweekend/api/internal/domain"
	"github.com/matenweekend/api/internal/repository"
)

var (
	ErrActivityNotOpen       = repository.ErrActivityNotOpen
	ErrActivityFull          = repository.ErrActivityFull
	ErrAlreadyJoined         = repository.ErrAlreadyJoined
	ErrNotJoined             = repository.ErrNotJoined
	ErrParticipationNotFound = repository.ErrParticipationNotFound
)

type ParticipationRepository interface {
	Atomic(ctx context.Context, activityID uint, fn func(store repository.ActivityStore) error) error
	GetParticipationByID(ctx context.Context, id uint) (domain.Participation, error)
	ListParticipants(ctx context.Context, activityID uint) ([]domain.Participation, error)
}

// ParticipationService guards join and leave against the activity's status
// and capacity. The capacity check and the insert share one Atomic scope, so
// concurrent joins cannot jointly exceed the limit; the unique
// (activity, user) constraint backstops duplicates.
type ParticipationService struct {
	repo ParticipationRepository
}

func NewParticipationService(repo ParticipationRepository) *ParticipationService {
	return &ParticipationService{
		repo: repo,
	}
}

// Join records userID as a participant. The user always comes from the
// request context, never from the request body.
func (s *ParticipationService) Join(ctx context.Context, activityID, userID uint) (domain.Participation, error) {
	var out domain.Participation

	err := s.repo.Atomic(ctx, activityID, func(store repository.ActivityStore) error {
		activity, err := store.GetActivity(ctx, activityID)
		if err != nil {
			return err
		}

		if !activity.IsOpen() {
			return ErrActivityNotOpen
		}

		count, err := store.CountParticipations(ctx, activityID)
		if err != nil {
			return err
		}
		if !activity.HasCapacity(count) {
			return ErrActivityFull
		}

		out, err = store.InsertParticipation(ctx, domain.Participation{
			ActivityID: activityID,
			UserID:     userID,
		})

		return err
	})
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.repo.Atomic -> %w", err)
	}

	return out, nil
}

// Leave removes the requester's own participation. Completed activities have
// a frozen roster: their payouts were computed from it.
func (s *ParticipationService) Leave(ctx context.Context, activityID, userID uint) error {
	err := s.repo.Atomic(ctx, activityID, func(store repository.ActivityStore) error {
		participation, err := store.GetParticipation(ctx, activityID, userID)
		if err != nil {
			return err
		}

		activity, err := store.GetActivity(ctx, activityID)
		if err != nil {
			return err
		}
		if activity.Status == domain.ActivityCompleted {
			return ErrActivityCompleted
		}

		return store.DeleteParticipation(ctx, participation.ID)
	})
	if err != nil {
		return fmt.Errorf("s.repo.Atomic -> %w", err)
	}

	return nil
}

// RemoveParticipant lets a moderator drop any participation, under the same
// completion lock as self-leave.
func (s *ParticipationService) RemoveParticipant(ctx context.Context, participationID uint) error {
	participation, err := s.repo.GetParticipationByID(ctx, participationID)
	if err != nil {
		return fmt.Errorf("s.repo.GetParticipationByID -> %w", err)
	}

	err = s.repo.Atomic(ctx, participation.ActivityID, func(store repository.ActivityStore) error {
		activity, err := store.GetActivity(ctx, participation.ActivityID)
		if err != nil {
			return err
		}
		if activity.Status == domain.ActivityCompleted {
			return ErrActivityCompleted
		}

		return store.DeleteParticipation(ctx, participationID)
	})
	if err != nil {
		return fmt.Errorf("s.repo.Atomic -> %w", err)
	}

	return nil
}

func (s *ParticipationService) Participation(ctx context.Context, participationID uint) (domain.Participation, error) {
	participation, err := s.repo.GetParticipationByID(ctx, participationID)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.repo.GetParticipationByID -> %w", err)
	}

	return participation, nil
}

func (s *ParticipationService) Participants(ctx context.Context, activityID uint) ([]domain.Participation, error) {
	participants, err := s.repo.ListParticipants(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListParticipants -> %w", err)
	}

	return participants, nil
}
