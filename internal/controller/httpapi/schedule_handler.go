package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/consulthub/scheduler-api/internal/apperr"
	"github.com/consulthub/scheduler-api/internal/model"
	"github.com/consulthub/scheduler-api/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ScheduleHandler HTTP-обработчики сценариев работы со слотами
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
	logger          *zap.Logger
}

func NewScheduleHandler(scheduleService *service.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		logger:          logger,
	}
}

// Create обрабатывает POST /api/v1/schedules
func (h *ScheduleHandler) Create(c echo.Context) error {
	var req createSchedulesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	role, err := parseRole(req.OperatorRole)
	if err != nil {
		return badRequest(c, err.Error())
	}

	candidates := make([]service.ScheduleCandidate, 0, len(req.Schedules))
	for _, r := range req.Schedules {
		candidate, err := r.toCandidate()
		if err != nil {
			return badRequest(c, err.Error())
		}
		candidates = append(candidates, candidate)
	}

	created, err := h.scheduleService.CreateSchedules(c.Request().Context(), candidates, req.OperatorID, role)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusCreated, toScheduleResponses(created))
}

// Get обрабатывает GET /api/v1/schedules/:id
func (h *ScheduleHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}

	schedule, err := h.scheduleService.GetSchedule(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, toScheduleResponse(schedule))
}

// List обрабатывает GET /api/v1/schedules
func (h *ScheduleHandler) List(c echo.Context) error {
	var filter model.ScheduleFilter

	if v := c.QueryParam("giver_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid giver_id")
		}
		filter.GiverID = &id
	}
	if v := c.QueryParam("taker_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid taker_id")
		}
		filter.TakerID = &id
	}
	if v := c.QueryParam("status"); v != "" {
		status := model.ScheduleStatus(v)
		if !status.Valid() {
			return badRequest(c, "invalid status")
		}
		filter.Status = &status
	}

	schedules, err := h.scheduleService.ListSchedules(c.Request().Context(), filter)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, toScheduleResponses(schedules))
}

// Update обрабатывает PATCH /api/v1/schedules/:id
func (h *ScheduleHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}

	var req updateScheduleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	role, err := parseRole(req.OperatorRole)
	if err != nil {
		return badRequest(c, err.Error())
	}

	upd, err := req.toUpdate()
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.scheduleService.UpdateSchedule(c.Request().Context(), id, req.OperatorID, role, upd)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, toScheduleResponse(updated))
}

// Delete обрабатывает DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}

	operatorID := int64(0)
	if v := c.QueryParam("operator_id"); v != "" {
		operatorID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid operator_id")
		}
	}

	role := model.RoleSystem
	if v := c.QueryParam("operator_role"); v != "" {
		role, err = parseRole(v)
		if err != nil {
			return badRequest(c, err.Error())
		}
	}

	result, err := h.scheduleService.DeleteSchedule(c.Request().Context(), id, operatorID, role)
	if err != nil {
		return h.respondError(c, err)
	}

	// Идемпотентность наружу: повторное удаление тоже deleted=true
	return c.JSON(http.StatusOK, deleteScheduleResponse{
		Deleted: result == service.DeleteDone || result == service.DeleteAlreadyDone,
	})
}

// respondError переводит ошибки движка в HTTP-ответы
func (h *ScheduleHandler) respondError(c echo.Context, err error) error {
	var (
		validationErr *apperr.ValidationError
		conflictErr   *apperr.ConflictError
		notFoundErr   *apperr.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, errorResponse{
			Code:    validationErr.Code(),
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})
	case errors.As(err, &conflictErr):
		return c.JSON(http.StatusConflict, errorResponse{
			Code:      conflictErr.Code(),
			Message:   conflictErr.Error(),
			Conflicts: toConflictResponses(conflictErr.Conflicts),
		})
	case errors.As(err, &notFoundErr):
		return c.JSON(http.StatusNotFound, errorResponse{
			Code:    notFoundErr.Code(),
			Message: notFoundErr.Error(),
		})
	default:
		h.logger.Error("Unhandled error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Code:    apperr.CodePersistence,
			Message: "internal server error",
		})
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{
		Code:    apperr.CodeValidation,
		Message: message,
	})
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
