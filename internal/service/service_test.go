package service

import (
	"context"
	"sync"

	"github.com/matenweekend/api/internal/domain"
	"github.com/matenweekend/api/internal/repository"
)

// fakeRepo is an in-memory stand-in for the gorm-backed repositories. Atomic
// takes a per-activity lock, matching the row lock the real implementation
// acquires, so the concurrency tests exercise the same serialization the
// services rely on in production.
type fakeRepo struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex

	activities     map[uint]domain.Activity
	participations map[uint]domain.Participation
	transactions   []domain.PointTransaction

	nextActivityID      uint
	nextParticipationID uint
	nextTransactionID   uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		locks:          make(map[uint]*sync.Mutex),
		activities:     make(map[uint]domain.Activity),
		participations: make(map[uint]domain.Participation),
	}
}

func (f *fakeRepo) activityLock(activityID uint) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()

	lock, ok := f.locks[activityID]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[activityID] = lock
	}

	return lock
}

func (f *fakeRepo) Atomic(_ context.Context, activityID uint, fn func(store repository.ActivityStore) error) error {
	lock := f.activityLock(activityID)
	lock.Lock()
	defer lock.Unlock()

	return fn(&fakeStore{repo: f})
}

func (f *fakeRepo) Create(_ context.Context, activity domain.Activity) (domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextActivityID++
	activity.ID = f.nextActivityID
	f.activities[activity.ID] = activity

	return activity, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uint) (domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	activity, ok := f.activities[id]
	if !ok {
		return domain.Activity{}, repository.ErrActivityNotFound
	}

	return activity, nil
}

func (f *fakeRepo) List(_ context.Context, filter domain.ActivityFilter) ([]domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var activities []domain.Activity
	for _, a := range f.activities {
		switch filter {
		case domain.FilterCompleted:
			if a.Status != domain.ActivityCompleted && a.Status != domain.ActivityCancelled {
				continue
			}
		case domain.FilterUpcoming:
			if a.Status != domain.ActivityOpen {
				continue
			}
		}

		activities = append(activities, a)
	}

	return activities, nil
}

func (f *fakeRepo) GetParticipationByID(_ context.Context, id uint) (domain.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	participation, ok := f.participations[id]
	if !ok {
		return domain.Participation{}, repository.ErrParticipationNotFound
	}

	return participation, nil
}

func (f *fakeRepo) ListParticipants(_ context.Context, activityID uint) ([]domain.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.participantsLocked(activityID), nil
}

func (f *fakeRepo) participantsLocked(activityID uint) []domain.Participation {
	var participants []domain.Participation
	for _, p := range f.participations {
		if p.ActivityID == activityID {
			participants = append(participants, p)
		}
	}

	return participants
}

// Append and the list methods implement the LedgerRepository and
// RankingLedger surfaces.
func (f *fakeRepo) Append(_ context.Context, transaction domain.PointTransaction) (domain.PointTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.appendLocked(transaction), nil
}

func (f *fakeRepo) appendLocked(transaction domain.PointTransaction) domain.PointTransaction {
	f.nextTransactionID++
	transaction.ID = f.nextTransactionID
	f.transactions = append(f.transactions, transaction)

	return transaction
}

func (f *fakeRepo) ListAll(_ context.Context) ([]domain.PointTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]domain.PointTransaction(nil), f.transactions...), nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uint) ([]domain.PointTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var transactions []domain.PointTransaction
	for _, t := range f.transactions {
		if t.UserID == userID {
			transactions = append(transactions, t)
		}
	}

	return transactions, nil
}

func (f *fakeRepo) totalFor(userID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, t := range f.transactions {
		if t.UserID == userID {
			total += t.Amount
		}
	}

	return total
}

// fakeStore gives an Atomic callback the same view the transaction-scoped
// DAOs give the real one.
type fakeStore struct {
	repo *fakeRepo
}

func (s *fakeStore) GetActivity(_ context.Context, id uint) (domain.Activity, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	activity, ok := s.repo.activities[id]
	if !ok {
		return domain.Activity{}, repository.ErrActivityNotFound
	}

	return activity, nil
}

func (s *fakeStore) UpdateActivityStatus(_ context.Context, id uint, status domain.ActivityStatus) error {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	activity, ok := s.repo.activities[id]
	if !ok {
		return repository.ErrActivityNotFound
	}

	activity.Status = status
	s.repo.activities[id] = activity

	return nil
}

func (s *fakeStore) DeleteActivity(_ context.Context, id uint) error {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	delete(s.repo.activities, id)
	for pid, p := range s.repo.participations {
		if p.ActivityID == id {
			delete(s.repo.participations, pid)
		}
	}

	return nil
}

func (s *fakeStore) CountParticipations(_ context.Context, activityID uint) (int64, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	return int64(len(s.repo.participantsLocked(activityID))), nil
}

func (s *fakeStore) ListParticipations(_ context.Context, activityID uint) ([]domain.Participation, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	return s.repo.participantsLocked(activityID), nil
}

func (s *fakeStore) GetParticipation(_ context.Context, activityID, userID uint) (domain.Participation, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	for _, p := range s.repo.participations {
		if p.ActivityID == activityID && p.UserID == userID {
			return p, nil
		}
	}

	return domain.Participation{}, repository.ErrNotJoined
}

func (s *fakeStore) GetParticipationByID(_ context.Context, id uint) (domain.Participation, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	participation, ok := s.repo.participations[id]
	if !ok {
		return domain.Participation{}, repository.ErrParticipationNotFound
	}

	return participation, nil
}

func (s *fakeStore) InsertParticipation(_ context.Context, participation domain.Participation) (domain.Participation, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	for _, p := range s.repo.participations {
		if p.ActivityID == participation.ActivityID && p.UserID == participation.UserID {
			return domain.Participation{}, repository.ErrAlreadyJoined
		}
	}

	s.repo.nextParticipationID++
	participation.ID = s.repo.nextParticipationID
	s.repo.participations[participation.ID] = participation

	return participation, nil
}

func (s *fakeStore) DeleteParticipation(_ context.Context, id uint) error {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	delete(s.repo.participations, id)

	return nil
}

func (s *fakeStore) HasSettlement(_ context.Context, activityID uint) (bool, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	settlements, reversals := s.settlementCountsLocked(activityID)

	return settlements > reversals, nil
}

func (s *fakeStore) ListSettlement(_ context.Context, activityID uint) ([]domain.PointTransaction, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	var settlement []domain.PointTransaction
	reversals := 0
	for _, t := range s.repo.transactions {
		if t.ActivityID == nil || *t.ActivityID != activityID {
			continue
		}

		switch t.Type {
		case domain.TransactionCreation, domain.TransactionParticipation:
			settlement = append(settlement, t)
		case domain.TransactionDeduction:
			reversals++
		}
	}

	if reversals >= len(settlement) {
		return nil, nil
	}

	return settlement[reversals:], nil
}

func (s *fakeStore) InsertTransaction(_ context.Context, transaction domain.PointTransaction) (domain.PointTransaction, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	return s.repo.appendLocked(transaction), nil
}

func (s *fakeStore) settlementCountsLocked(activityID uint) (int, int) {
	settlements, reversals := 0, 0
	for _, t := range s.repo.transactions {
		if t.ActivityID == nil || *t.ActivityID != activityID {
			continue
		}

		switch t.Type {
		case domain.TransactionCreation, domain.TransactionParticipation:
			settlements++
		case domain.TransactionDeduction:
			reversals++
		}
	}

	return settlements, reversals
}

// fakeUserRepo backs both the user lookups and the auth flows.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint]domain.User
	nextID uint
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	f := &fakeUserRepo{
		users: make(map[uint]domain.User),
	}
	for _, u := range users {
		f.users[u.ID] = u
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
	}

	return f
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}

	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user

	return user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}

	return domain.User{}, repository.ErrUserNotFound
}

func (f *fakeUserRepo) FindByIDs(_ context.Context, ids []uint) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var users []domain.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			users = append(users, u)
		}
	}

	return users, nil
}

// fakeCache records ranking cache traffic.
type fakeCache struct {
	mu          sync.Mutex
	entries     []domain.RankingEntry
	cached      bool
	invalidated int
}

func (c *fakeCache) Get(_ context.Context) ([]domain.RankingEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cached {
		return nil, false, nil
	}

	return c.entries, true, nil
}

func (c *fakeCache) Set(_ context.Context, entries []domain.RankingEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = entries
	c.cached = true

	return nil
}

func (c *fakeCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	c.cached = false
	c.invalidated++

	return nil
}
