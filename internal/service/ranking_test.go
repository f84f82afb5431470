package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matenweekend/api/internal/domain"
)

func seedLedger(t *testing.T, repo *fakeRepo, entries ...domain.PointTransaction) {
	t.Helper()

	for _, entry := range entries {
		_, err := repo.Append(context.Background(), entry)
		require.NoError(t, err)
	}
}

func TestRankingService_ComputeRanking(t *testing.T) {
	repo := newFakeRepo()
	users := newFakeUserRepo(
		domain.User{ID: 1, Email: "alice@example.com", Name: "Alice"},
		domain.User{ID: 2, Email: "bob@example.com", Name: "Bob"},
	)
	svc := NewRankingService(repo, users, nil)

	seedLedger(t, repo,
		domain.PointTransaction{UserID: 1, Amount: 10},
		domain.PointTransaction{UserID: 2, Amount: 30},
		domain.PointTransaction{UserID: 1, Amount: 5},
	)

	ranking, err := svc.ComputeRanking(context.Background())
	require.NoError(t, err)

	require.Len(t, ranking, 2)
	assert.Equal(t, domain.RankingEntry{UserID: 2, Name: "Bob", TotalPoints: 35, Rank: 1}, ranking[0])
	assert.Equal(t, domain.RankingEntry{UserID: 1, Name: "Alice", TotalPoints: 15, Rank: 2}, ranking[1])
}

func TestRankingService_TieBreaksByUserID(t *testing.T) {
	repo := newFakeRepo()
	users := newFakeUserRepo(
		domain.User{ID: 7, Email: "late@example.com"},
		domain.User{ID: 3, Email: "early@example.com"},
	)
	svc := NewRankingService(repo, users, nil)

	// User 7 appears first in the ledger but loses the tie on ID.
	seedLedger(t, repo,
		domain.PointTransaction{UserID: 7, Amount: 20},
		domain.PointTransaction{UserID: 3, Amount: 20},
	)

	ranking, err := svc.ComputeRanking(context.Background())
	require.NoError(t, err)

	require.Len(t, ranking, 2)
	assert.Equal(t, uint(3), ranking[0].UserID)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, uint(7), ranking[1].UserID)
	assert.Equal(t, 2, ranking[1].Rank)
}

func TestRankingService_NameFallsBackToEmailPrefix(t *testing.T) {
	repo := newFakeRepo()
	users := newFakeUserRepo(domain.User{ID: 1, Email: "nameless@example.com", Avatar: "a.png"})
	svc := NewRankingService(repo, users, nil)

	seedLedger(t, repo, domain.PointTransaction{UserID: 1, Amount: 10})

	ranking, err := svc.ComputeRanking(context.Background())
	require.NoError(t, err)

	require.Len(t, ranking, 1)
	assert.Equal(t, "nameless", ranking[0].Name)
	assert.Equal(t, "a.png", ranking[0].Avatar)
}

func TestRankingService_NegativeAndZeroTotals(t *testing.T) {
	repo := newFakeRepo()
	users := newFakeUserRepo(
		domain.User{ID: 1, Email: "a@example.com"},
		domain.User{ID: 2, Email: "b@example.com"},
	)
	svc := NewRankingService(repo, users, nil)

	// Reversals can drive a total to zero; it still ranks.
	seedLedger(t, repo,
		domain.PointTransaction{UserID: 1, Amount: 10},
		domain.PointTransaction{UserID: 1, Amount: -10},
		domain.PointTransaction{UserID: 2, Amount: -5},
	)

	ranking, err := svc.ComputeRanking(context.Background())
	require.NoError(t, err)

	require.Len(t, ranking, 2)
	assert.Equal(t, 0, ranking[0].TotalPoints)
	assert.Equal(t, uint(1), ranking[0].UserID)
	assert.Equal(t, -5, ranking[1].TotalPoints)
}

func TestRankingService_Empty(t *testing.T) {
	svc := NewRankingService(newFakeRepo(), newFakeUserRepo(), nil)

	ranking, err := svc.ComputeRanking(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ranking)
}

func TestRankingService_UsesCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	users := newFakeUserRepo(domain.User{ID: 1, Email: "a@example.com"})
	cache := &fakeCache{}
	svc := NewRankingService(repo, users, cache)

	seedLedger(t, repo, domain.PointTransaction{UserID: 1, Amount: 10})

	first, err := svc.ComputeRanking(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, cache.cached)

	// New ledger entries are invisible until the cache is invalidated.
	seedLedger(t, repo, domain.PointTransaction{UserID: 1, Amount: 5})

	cachedView, err := svc.ComputeRanking(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, cachedView[0].TotalPoints)

	require.NoError(t, cache.Invalidate(ctx))

	fresh, err := svc.ComputeRanking(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, fresh[0].TotalPoints)
}
