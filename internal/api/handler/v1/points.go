package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matenweekend/api/internal/api/handler/v1/request"
	"github.com/matenweekend/api/internal/api/handler/v1/response"
	"github.com/matenweekend/api/internal/domain"
	"github.com/matenweekend/api/internal/service"
)

type RankingService interface {
	ComputeRanking(ctx context.Context) ([]domain.RankingEntry, error)
}

type LedgerService interface {
	AwardManual(ctx context.Context, userID uint, amount int, reason string, awardedBy uint) (domain.PointTransaction, error)
	UserTransactions(ctx context.Context, userID uint) ([]domain.PointTransaction, error)
}

type PointsHandler struct {
	rSvc RankingService
	lSvc LedgerService
	uSvc UserService
}

func NewPointsHandler(rSvc RankingService, lSvc LedgerService, uSvc UserService) *PointsHandler {
	return &PointsHandler{
		rSvc: rSvc,
		lSvc: lSvc,
		uSvc: uSvc,
	}
}

// HandleGetRanking godoc
// @Summary      Get the points ranking
// @Tags         points
// @Produce      json
// @Success      200  {array}   domain.RankingEntry
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /ranking [get]
// @Security     BearerAuth
func (h *PointsHandler) HandleGetRanking(ctx *gin.Context) {
	ranking, err := h.rSvc.ComputeRanking(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetRanking -> h.rSvc.ComputeRanking -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, ranking)
}

// HandleGetUserTransactions godoc
// @Summary      List a user's point transactions
// @Tags         points
// @Produce      json
// @Param        userID   path      int  true  "user ID"
// @Success      200      {array}   domain.PointTransaction
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users/{userID}/transactions [get]
// @Security     BearerAuth
func (h *PointsHandler) HandleGetUserTransactions(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("userID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid user ID: %w", err)))

		return
	}

	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if user.ID != uint(userID) && !user.IsAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v cannot view transactions of user %v", user.ID, userID)))

		return
	}

	transactions, err := h.lSvc.UserTransactions(ctx.Request.Context(), uint(userID))
	if err != nil {
		err = fmt.Errorf("v1.HandleGetUserTransactions -> h.lSvc.UserTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, transactions)
}

// HandleAwardPoints godoc
// @Summary      Manually award or deduct points
// @Tags         points
// @Produce      json
// @Param        request  body      request.AwardPointsRequest true "request body"
// @Success      201      {object}  response.AwardPointsResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /points/award [post]
// @Security     BearerAuth
func (h *PointsHandler) HandleAwardPoints(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if !user.IsAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an admin", user.ID)))

		return
	}

	var req request.AwardPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	transaction, err := h.lSvc.AwardManual(ctx.Request.Context(), req.UserID, req.Amount, req.Reason, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", req.UserID))

			return
		}

		err = fmt.Errorf("v1.HandleAwardPoints -> h.lSvc.AwardManual -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, response.AwardPointsResponse{
		Message:       "points awarded",
		UserID:        transaction.UserID,
		PointsAwarded: transaction.Amount,
		TransactionID: transaction.ID,
	})
}
