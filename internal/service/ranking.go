package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/matenweekend/api/internal/domain"
)

type RankingLedger interface {
	ListAll(ctx context.Context) ([]domain.PointTransaction, error)
}

type RankingUsers interface {
	FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error)
}

// RankingService derives the leaderboard from the ledger on demand. Totals
// are a fold over all transactions; nothing here is stored, so the ranking
// can never drift from the ledger.
type RankingService struct {
	ledger RankingLedger
	users  RankingUsers
	cache  RankingCache
}

func NewRankingService(ledger RankingLedger, users RankingUsers, cache RankingCache) *RankingService {
	return &RankingService{
		ledger: ledger,
		users:  users,
		cache:  cache,
	}
}

// ComputeRanking returns the full ordered leaderboard. Callers pick their own
// window. Equal totals are ordered by ascending user ID; ranks are 1-based
// and ties are not collapsed.
func (s *RankingService) ComputeRanking(ctx context.Context) ([]domain.RankingEntry, error) {
	if s.cache != nil {
		entries, ok, err := s.cache.Get(ctx)
		if err != nil {
			zap.L().Warn("failed to read ranking cache", zap.Error(err))
		} else if ok {
			return entries, nil
		}
	}

	transactions, err := s.ledger.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.ledger.ListAll -> %w", err)
	}

	totals := make(map[uint]int)
	var order []uint
	for _, t := range transactions {
		if _, seen := totals[t.UserID]; !seen {
			order = append(order, t.UserID)
		}
		totals[t.UserID] += t.Amount
	}

	entries := make([]domain.RankingEntry, len(order))
	for i, userID := range order {
		entries[i] = domain.RankingEntry{
			UserID:      userID,
			TotalPoints: totals[userID],
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}

		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	if err = s.decorate(ctx, entries, order); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err = s.cache.Set(ctx, entries); err != nil {
			zap.L().Warn("failed to write ranking cache", zap.Error(err))
		}
	}

	return entries, nil
}

func (s *RankingService) decorate(ctx context.Context, entries []domain.RankingEntry, userIDs []uint) error {
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("s.users.FindByIDs -> %w", err)
	}

	byID := make(map[uint]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for i := range entries {
		user, found := byID[entries[i].UserID]
		if !found {
			continue
		}

		name := user.Name
		if name == "" {
			name = strings.SplitN(user.Email, "@", 2)[0]
		}

		entries[i].Name = name
		entries[i].Avatar = user.Avatar
	}

	return nil
}
