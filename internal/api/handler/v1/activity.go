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

type ActivityService interface {
	Create(ctx context.Context, activity domain.Activity, creatorID uint) (domain.Activity, error)
	GetByID(ctx context.Context, id uint) (domain.Activity, error)
	List(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error)
	Complete(ctx context.Context, id uint) (domain.Activity, error)
	Cancel(ctx context.Context, id uint) (domain.Activity, error)
	Reopen(ctx context.Context, id uint) (domain.Activity, error)
	Delete(ctx context.Context, id uint) error
}

type ParticipationService interface {
	Join(ctx context.Context, activityID, userID uint) (domain.Participation, error)
	Leave(ctx context.Context, activityID, userID uint) error
	RemoveParticipant(ctx context.Context, participationID uint) error
	Participation(ctx context.Context, participationID uint) (domain.Participation, error)
	Participants(ctx context.Context, activityID uint) ([]domain.Participation, error)
}

type ActivityHandler struct {
	svc  ActivityService
	pSvc ParticipationService
	uSvc UserService
}

func NewActivityHandler(svc ActivityService, pSvc ParticipationService, uSvc UserService) *ActivityHandler {
	return &ActivityHandler{
		svc:  svc,
		pSvc: pSvc,
		uSvc: uSvc,
	}
}

// HandleListActivities godoc
// @Summary      List activities
// @Tags         activities
// @Produce      json
// @Param        filter   query     string  false  "all, upcoming or completed"
// @Success      200      {array}   domain.Activity
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /activities [get]
// @Security     BearerAuth
func (h *ActivityHandler) HandleListActivities(ctx *gin.Context) {
	filter := domain.ActivityFilter(ctx.DefaultQuery("filter", string(domain.FilterAll)))
	switch filter {
	case domain.FilterAll, domain.FilterUpcoming, domain.FilterCompleted:
	default:
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid filter %q", filter)))

		return
	}

	activities, err := h.svc.List(ctx.Request.Context(), filter)
	if err != nil {
		err = fmt.Errorf("v1.HandleListActivities -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, activities)
}

// HandleCreateActivity godoc
// @Summary      Create an activity
// @Tags         activities
// @Produce      json
// @Param        request  body      request.CreateActivityRequest true "request body"
// @Success      201      {object}  domain.Activity
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /activities [post]
// @Security     BearerAuth
func (h *ActivityHandler) HandleCreateActivity(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.CreateActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	activity, err := h.svc.Create(ctx.Request.Context(), domain.Activity{
		Title:             req.Title,
		Description:       req.Description,
		StartTime:         req.StartTime,
		PointsParticipant: req.PointsParticipant,
		PointsCreator:     req.PointsCreator,
		MaxParticipants:   req.MaxParticipants,
	}, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}

		err = fmt.Errorf("v1.HandleCreateActivity -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, activity)
}

// HandleGetActivity godoc
// @Summary      Get an activity
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true  "activity ID"
// @Success      200         {object}  domain.Activity
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID} [get]
// @Security     BearerAuth
func (h *ActivityHandler) HandleGetActivity(ctx *gin.Context) {
	activityID, ok := parseActivityID(ctx)
	if !ok {
		return
	}

	activity, err := h.svc.GetByID(ctx.Request.Context(), activityID)
	if err != nil {
		renderActivityErr(ctx, activityID, fmt.Errorf("v1.HandleGetActivity -> h.svc.GetByID -> %w", err))

		return
	}

	ctx.JSON(http.StatusOK, activity)
}

// HandleDeleteActivity godoc
// @Summary      Delete an activity
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true  "activity ID"
// @Success      204
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID} [delete]
// @Security     BearerAuth
func (h *ActivityHandler) HandleDeleteActivity(ctx *gin.Context) {
	activityID, ok := parseActivityID(ctx)
	if !ok {
		return
	}

	if respErr := h.requireCreatorOrAdmin(ctx, activityID); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), activityID); err != nil {
		renderActivityErr(ctx, activityID, fmt.Errorf("v1.HandleDeleteActivity -> h.svc.Delete -> %w", err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleCompleteActivity godoc
// @Summary      Complete an activity and settle its points
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true  "activity ID"
// @Success      200         {object}  domain.Activity
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/complete [post]
// @Security     BearerAuth
func (h *ActivityHandler) HandleCompleteActivity(ctx *gin.Context) {
	h.handleTransition(ctx, h.svc.Complete, "v1.HandleCompleteActivity")
}

// HandleCancelActivity godoc
// @Summary      Cancel an activity
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true  "activity ID"
// @Success      200         {object}  domain.Activity
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/cancel [post]
// @Security     BearerAuth
func (h *ActivityHandler) HandleCancelActivity(ctx *gin.Context) {
	h.handleTransition(ctx, h.svc.Cancel, "v1.HandleCancelActivity")
}

// HandleReopenActivity godoc
// @Summary      Reopen a completed or cancelled activity
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true  "activity ID"
// @Success      200         {object}  domain.Activity
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/reopen [post]
// @Security     BearerAuth
func (h *ActivityHandler) HandleReopenActivity(ctx *gin.Context) {
	h.handleTransition(ctx, h.svc.Reopen, "v1.HandleReopenActivity")
}

func (h *ActivityHandler) handleTransition(ctx *gin.Context, fn func(ctx context.Context, id uint) (domain.Activity, error), op string) {
	activityID, ok := parseActivityID(ctx)
	if !ok {
		return
	}

	if respErr := h.requireCreatorOrAdmin(ctx, activityID); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	activity, err := fn(ctx.Request.Context(), activityID)
	if err != nil {
		renderActivityErr(ctx, activityID, fmt.Errorf("%v -> %w", op, err))

		return
	}

	ctx.JSON(http.StatusOK, activity)
}

// HandleJoinActivity godoc
// @Summary      Join an activity
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true  "activity ID"
// @Success      201         {object}  domain.Participation
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/join [post]
// @Security     BearerAuth
func (h *ActivityHandler) HandleJoinActivity(ctx *gin.Context) {
	activityID, ok := parseActivityID(ctx)
	if !ok {
		return
	}

	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	participation, err := h.pSvc.Join(ctx.Request.Context(), activityID, user.ID)
	if err != nil {
		renderActivityErr(ctx, activityID, fmt.Errorf("v1.HandleJoinActivity -> h.pSvc.Join -> %w", err))

		return
	}

	ctx.JSON(http.StatusCreated, participation)
}

// HandleLeaveActivity godoc
// @Summary      Leave an activity
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true  "activity ID"
// @Success      204
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/leave [post]
// @Security     BearerAuth
func (h *ActivityHandler) HandleLeaveActivity(ctx *gin.Context) {
	activityID, ok := parseActivityID(ctx)
	if !ok {
		return
	}

	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if err := h.pSvc.Leave(ctx.Request.Context(), activityID, user.ID); err != nil {
		renderActivityErr(ctx, activityID, fmt.Errorf("v1.HandleLeaveActivity -> h.pSvc.Leave -> %w", err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListParticipants godoc
// @Summary      List an activity's participants
// @Tags         activities
// @Produce      json
// @Param        activityID  path      int  true  "activity ID"
// @Success      200         {array}   domain.Participation
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /activities/{activityID}/participants [get]
// @Security     BearerAuth
func (h *ActivityHandler) HandleListParticipants(ctx *gin.Context) {
	activityID, ok := parseActivityID(ctx)
	if !ok {
		return
	}

	if _, err := h.svc.GetByID(ctx.Request.Context(), activityID); err != nil {
		renderActivityErr(ctx, activityID, fmt.Errorf("v1.HandleListParticipants -> h.svc.GetByID -> %w", err))

		return
	}

	participants, err := h.pSvc.Participants(ctx.Request.Context(), activityID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListParticipants -> h.pSvc.Participants -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, participants)
}

// HandleRemoveParticipation godoc
// @Summary      Remove a participation
// @Tags         activities
// @Produce      json
// @Param        participationID  path  int  true  "participation ID"
// @Success      204
// @Failure      400              {object}  response.Err
// @Failure      401              {object}  response.Err
// @Failure      403              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Failure      500              {object}  response.Err
// @Router       /participations/{participationID} [delete]
// @Security     BearerAuth
func (h *ActivityHandler) HandleRemoveParticipation(ctx *gin.Context) {
	participationID, err := strconv.ParseUint(ctx.Param("participationID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid participation ID: %w", err)))

		return
	}

	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	participation, err := h.pSvc.Participation(ctx.Request.Context(), uint(participationID))
	if err != nil {
		if errors.Is(err, service.ErrParticipationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("participation", "ID", participationID))

			return
		}

		err = fmt.Errorf("v1.HandleRemoveParticipation -> h.pSvc.Participation -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	if participation.UserID != user.ID && !user.IsAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v cannot remove participation %v", user.ID, participationID)))

		return
	}

	if err := h.pSvc.RemoveParticipant(ctx.Request.Context(), uint(participationID)); err != nil {
		renderActivityErr(ctx, participation.ActivityID, fmt.Errorf("v1.HandleRemoveParticipation -> h.pSvc.RemoveParticipant -> %w", err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *ActivityHandler) requireCreatorOrAdmin(ctx *gin.Context, activityID uint) *response.Err {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		return respErr
	}

	activity, err := h.svc.GetByID(ctx.Request.Context(), activityID)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			return response.ErrNotFound("activity", "ID", activityID)
		}

		return response.ErrInternalServerError(fmt.Errorf("v1.requireCreatorOrAdmin -> h.svc.GetByID -> %w", err))
	}

	if activity.CreatorID != user.ID && !user.IsAdmin {
		return response.ErrPermissionDenied(fmt.Errorf("user %v is not the creator of activity %v", user.ID, activityID))
	}

	return nil
}

func parseActivityID(ctx *gin.Context) (uint, bool) {
	activityID, err := strconv.ParseUint(ctx.Param("activityID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid activity ID: %w", err)))

		return 0, false
	}

	return uint(activityID), true
}

// renderActivityErr maps the guard and lifecycle errors onto HTTP statuses.
// Conflict-class errors describe a state the request lost against, not a bad
// request.
func renderActivityErr(ctx *gin.Context, activityID uint, err error) {
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		response.RenderErr(ctx, response.ErrNotFound("activity", "ID", activityID))
	case errors.Is(err, service.ErrNotJoined):
		response.RenderErr(ctx, response.ErrNotFound("participation", "activityID", activityID))
	case errors.Is(err, service.ErrInvalidTransition):
		response.RenderErr(ctx, response.ErrConflict(service.ErrInvalidTransition))
	case errors.Is(err, service.ErrActivityNotOpen):
		response.RenderErr(ctx, response.ErrConflict(service.ErrActivityNotOpen))
	case errors.Is(err, service.ErrActivityFull):
		response.RenderErr(ctx, response.ErrConflict(service.ErrActivityFull))
	case errors.Is(err, service.ErrAlreadyJoined):
		response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyJoined))
	case errors.Is(err, service.ErrActivityCompleted):
		response.RenderErr(ctx, response.ErrConflict(service.ErrActivityCompleted))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
