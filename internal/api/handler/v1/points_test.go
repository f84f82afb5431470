package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/matenweekend/api/internal/domain"
)

type stubRankingService struct {
	entries []domain.RankingEntry
}

func (s *stubRankingService) ComputeRanking(context.Context) ([]domain.RankingEntry, error) {
	return s.entries, nil
}

type stubLedgerService struct {
	awarded []domain.PointTransaction
}

func (s *stubLedgerService) AwardManual(_ context.Context, userID uint, amount int, reason string, awardedBy uint) (domain.PointTransaction, error) {
	transaction := domain.PointTransaction{ID: 1, UserID: userID, Amount: amount, Reason: reason, AwardedBy: &awardedBy}
	s.awarded = append(s.awarded, transaction)

	return transaction, nil
}

func (s *stubLedgerService) UserTransactions(_ context.Context, userID uint) ([]domain.PointTransaction, error) {
	return []domain.PointTransaction{{ID: 1, UserID: userID, Amount: 10}}, nil
}

func newPointsRouter(user domain.User) (*gin.Engine, *stubLedgerService) {
	gin.SetMode(gin.TestMode)

	lSvc := &stubLedgerService{}
	handler := NewPointsHandler(&stubRankingService{}, lSvc, &stubUserService{user: user})

	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		ctx.Set("userID", user.ID)
	})
	router.GET("/ranking", handler.HandleGetRanking)
	router.GET("/users/:userID/transactions", handler.HandleGetUserTransactions)
	router.POST("/points/award", handler.HandleAwardPoints)

	return router, lSvc
}

func TestPointsHandler_AwardRequiresAdmin(t *testing.T) {
	router, lSvc := newPointsRouter(domain.User{ID: 1})

	req := httptest.NewRequest(http.MethodPost, "/points/award",
		strings.NewReader(`{"user_id": 2, "amount": 10, "reason": "bonus"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, lSvc.awarded)
}

func TestPointsHandler_AwardAsAdmin(t *testing.T) {
	router, lSvc := newPointsRouter(domain.User{ID: 1, IsAdmin: true})

	req := httptest.NewRequest(http.MethodPost, "/points/award",
		strings.NewReader(`{"user_id": 2, "amount": -10, "reason": "penalty"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, lSvc.awarded, 1)
	assert.Equal(t, -10, lSvc.awarded[0].Amount)
}

func TestPointsHandler_TransactionsSelfOrAdmin(t *testing.T) {
	selfRouter, _ := newPointsRouter(domain.User{ID: 2})
	assert.Equal(t, http.StatusOK, perform(selfRouter, http.MethodGet, "/users/2/transactions").Code)
	assert.Equal(t, http.StatusForbidden, perform(selfRouter, http.MethodGet, "/users/3/transactions").Code)

	adminRouter, _ := newPointsRouter(domain.User{ID: 1, IsAdmin: true})
	assert.Equal(t, http.StatusOK, perform(adminRouter, http.MethodGet, "/users/3/transactions").Code)
}

func TestPointsHandler_Ranking(t *testing.T) {
	router, _ := newPointsRouter(domain.User{ID: 1})

	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/ranking").Code)
}
