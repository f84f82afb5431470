package repository

import (
	"context"
	"fmt"

	"github.com/matenweekend/api/internal/domain"
	"github.com/matenweekend/api/internal/repository/dao"
)

var (
	ErrActivityNotFound      = dao.ErrActivityNotFound
	ErrInvalidTransition     = dao.ErrInvalidTransition
	ErrActivityNotOpen       = dao.ErrActivityNotOpen
	ErrActivityFull          = dao.ErrActivityFull
	ErrActivityCompleted     = dao.ErrActivityCompleted
	ErrAlreadyJoined         = dao.ErrAlreadyJoined
	ErrNotJoined             = dao.ErrNotJoined
	ErrParticipationNotFound = dao.ErrParticipationNotFound
)

// ActivityStore is the view of storage available inside an Atomic scope. All
// operations run in the same database transaction, after the activity row has
// been locked, so check-then-act sequences on one activity are serialized.
type ActivityStore interface {
	GetActivity(ctx context.Context, id uint) (domain.Activity, error)
	UpdateActivityStatus(ctx context.Context, id uint, status domain.ActivityStatus) error
	DeleteActivity(ctx context.Context, id uint) error

	CountParticipations(ctx context.Context, activityID uint) (int64, error)
	ListParticipations(ctx context.Context, activityID uint) ([]domain.Participation, error)
	GetParticipation(ctx context.Context, activityID, userID uint) (domain.Participation, error)
	GetParticipationByID(ctx context.Context, id uint) (domain.Participation, error)
	InsertParticipation(ctx context.Context, participation domain.Participation) (domain.Participation, error)
	DeleteParticipation(ctx context.Context, id uint) error

	HasSettlement(ctx context.Context, activityID uint) (bool, error)
	ListSettlement(ctx context.Context, activityID uint) ([]domain.PointTransaction, error)
	InsertTransaction(ctx context.Context, transaction domain.PointTransaction) (domain.PointTransaction, error)
}

type ActivityRepository struct {
	dao              *dao.ActivityDAO
	participationDAO *dao.ParticipationDAO
}

func NewActivityRepository(activityDAO *dao.ActivityDAO, participationDAO *dao.ParticipationDAO) *ActivityRepository {
	return &ActivityRepository{
		dao:              activityDAO,
		participationDAO: participationDAO,
	}
}

// Atomic locks the activity row and runs fn against transaction-scoped
// storage. Everything fn writes commits as one unit or not at all.
func (r *ActivityRepository) Atomic(ctx context.Context, activityID uint, fn func(store ActivityStore) error) error {
	return r.dao.Transaction(ctx, func(aDAO *dao.ActivityDAO, pDAO *dao.ParticipationDAO, tDAO *dao.TransactionDAO) error {
		if _, err := aDAO.LockByID(ctx, activityID); err != nil {
			return fmt.Errorf("aDAO.LockByID -> %w", err)
		}

		return fn(&activityStore{
			activities:     aDAO,
			participations: pDAO,
			transactions:   tDAO,
		})
	})
}

func (r *ActivityRepository) Create(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	created, err := r.dao.Insert(ctx, activityDomainToDAO(activity))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return activityDAOToDomain(created), nil
}

func (r *ActivityRepository) GetByID(ctx context.Context, id uint) (domain.Activity, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return activityDAOToDomain(found), nil
}

func (r *ActivityRepository) List(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error) {
	found, err := r.dao.List(ctx, string(filter))
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	activities := make([]domain.Activity, len(found))
	for i, a := range found {
		activities[i] = activityDAOToDomain(a)
	}

	return activities, nil
}

func (r *ActivityRepository) GetParticipationByID(ctx context.Context, id uint) (domain.Participation, error) {
	found, err := r.participationDAO.FindByID(ctx, id)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.participationDAO.FindByID -> %w", err)
	}

	return participationDAOToDomain(found), nil
}

func (r *ActivityRepository) ListParticipants(ctx context.Context, activityID uint) ([]domain.Participation, error) {
	found, err := r.participationDAO.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("r.participationDAO.ListByActivity -> %w", err)
	}

	participations := make([]domain.Participation, len(found))
	for i, p := range found {
		participations[i] = participationDAOToDomain(p)
	}

	return participations, nil
}

// activityStore adapts transaction-bound DAOs to the ActivityStore interface.
type activityStore struct {
	activities     *dao.ActivityDAO
	participations *dao.ParticipationDAO
	transactions   *dao.TransactionDAO
}

func (s *activityStore) GetActivity(ctx context.Context, id uint) (domain.Activity, error) {
	found, err := s.activities.FindByID(ctx, id)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("s.activities.FindByID -> %w", err)
	}

	return activityDAOToDomain(found), nil
}

func (s *activityStore) UpdateActivityStatus(ctx context.Context, id uint, status domain.ActivityStatus) error {
	if err := s.activities.UpdateStatus(ctx, id, string(status)); err != nil {
		return fmt.Errorf("s.activities.UpdateStatus -> %w", err)
	}

	return nil
}

func (s *activityStore) DeleteActivity(ctx context.Context, id uint) error {
	if err := s.activities.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.activities.Delete -> %w", err)
	}

	return nil
}

func (s *activityStore) CountParticipations(ctx context.Context, activityID uint) (int64, error) {
	count, err := s.participations.CountByActivity(ctx, activityID)
	if err != nil {
		return 0, fmt.Errorf("s.participations.CountByActivity -> %w", err)
	}

	return count, nil
}

func (s *activityStore) ListParticipations(ctx context.Context, activityID uint) ([]domain.Participation, error) {
	found, err := s.participations.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("s.participations.ListByActivity -> %w", err)
	}

	participations := make([]domain.Participation, len(found))
	for i, p := range found {
		participations[i] = participationDAOToDomain(p)
	}

	return participations, nil
}

func (s *activityStore) GetParticipation(ctx context.Context, activityID, userID uint) (domain.Participation, error) {
	found, err := s.participations.Find(ctx, activityID, userID)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.participations.Find -> %w", err)
	}

	return participationDAOToDomain(found), nil
}

func (s *activityStore) GetParticipationByID(ctx context.Context, id uint) (domain.Participation, error) {
	found, err := s.participations.FindByID(ctx, id)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.participations.FindByID -> %w", err)
	}

	return participationDAOToDomain(found), nil
}

func (s *activityStore) InsertParticipation(ctx context.Context, participation domain.Participation) (domain.Participation, error) {
	created, err := s.participations.Insert(ctx, participationDomainToDAO(participation))
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.participations.Insert -> %w", err)
	}

	return participationDAOToDomain(created), nil
}

func (s *activityStore) DeleteParticipation(ctx context.Context, id uint) error {
	if err := s.participations.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.participations.Delete -> %w", err)
	}

	return nil
}

func (s *activityStore) HasSettlement(ctx context.Context, activityID uint) (bool, error) {
	settled, err := s.transactions.HasSettlement(ctx, activityID)
	if err != nil {
		return false, fmt.Errorf("s.transactions.HasSettlement -> %w", err)
	}

	return settled, nil
}

func (s *activityStore) ListSettlement(ctx context.Context, activityID uint) ([]domain.PointTransaction, error) {
	found, err := s.transactions.ListSettlementByActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("s.transactions.ListSettlementByActivity -> %w", err)
	}

	transactions := make([]domain.PointTransaction, len(found))
	for i, t := range found {
		transactions[i] = transactionDAOToDomain(t)
	}

	return transactions, nil
}

func (s *activityStore) InsertTransaction(ctx context.Context, transaction domain.PointTransaction) (domain.PointTransaction, error) {
	created, err := s.transactions.Insert(ctx, transactionDomainToDAO(transaction))
	if err != nil {
		return domain.PointTransaction{}, fmt.Errorf("s.transactions.Insert -> %w", err)
	}

	return transactionDAOToDomain(created), nil
}

func activityDomainToDAO(a domain.Activity) dao.Activity {
	return dao.Activity{
		ID:                a.ID,
		Title:             a.Title,
		Description:       a.Description,
		StartTime:         a.StartTime,
		Status:            string(a.Status),
		PointsParticipant: a.PointsParticipant,
		PointsCreator:     a.PointsCreator,
		MaxParticipants:   a.MaxParticipants,
		CreatorID:         a.CreatorID,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func activityDAOToDomain(a dao.Activity) domain.Activity {
	activity := domain.Activity{
		ID:                a.ID,
		Title:             a.Title,
		Description:       a.Description,
		StartTime:         a.StartTime,
		Status:            domain.ActivityStatus(a.Status),
		PointsParticipant: a.PointsParticipant,
		PointsCreator:     a.PointsCreator,
		MaxParticipants:   a.MaxParticipants,
		CreatorID:         a.CreatorID,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}

	if a.Creator.ID != 0 {
		creator := userDAOToDomain(a.Creator)
		activity.Creator = &creator
	}

	return activity
}

func participationDomainToDAO(p domain.Participation) dao.Participation {
	return dao.Participation{
		ID:         p.ID,
		ActivityID: p.ActivityID,
		UserID:     p.UserID,
		CreatedAt:  p.CreatedAt,
	}
}

func participationDAOToDomain(p dao.Participation) domain.Participation {
	participation := domain.Participation{
		ID:         p.ID,
		ActivityID: p.ActivityID,
		UserID:     p.UserID,
		CreatedAt:  p.CreatedAt,
	}

	if p.User.ID != 0 {
		user := userDAOToDomain(p.User)
		participation.User = &user
	}

	return participation
}
