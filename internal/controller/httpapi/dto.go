package httpapi

import (
	"fmt"
	"time"

	"github.com/consulthub/scheduler-api/internal/apperr"
	"github.com/consulthub/scheduler-api/internal/model"
	"github.com/consulthub/scheduler-api/internal/service"
)

const dateLayout = "2006-01-02"

type scheduleCandidateRequest struct {
	GiverID   int64   `json:"giver_id"`
	TakerID   *int64  `json:"taker_id"`
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Note      *string `json:"note"`
	Status    *string `json:"status"`
}

type createSchedulesRequest struct {
	Schedules    []scheduleCandidateRequest `json:"schedules"`
	OperatorID   int64                      `json:"operator_id"`
	OperatorRole string                     `json:"operator_role"`
}

type updateScheduleRequest struct {
	Date         *string `json:"date"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	TakerID      *int64  `json:"taker_id"`
	Status       *string `json:"status"`
	Note         *string `json:"note"`
	OperatorID   int64   `json:"operator_id"`
	OperatorRole string  `json:"operator_role"`
}

type scheduleResponse struct {
	ID        int64   `json:"id"`
	GiverID   int64   `json:"giver_id"`
	TakerID   *int64  `json:"taker_id"`
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Status    string  `json:"status"`
	Note      *string `json:"note"`

	CreatedBy     int64  `json:"created_by"`
	CreatedByRole string `json:"created_by_role"`
	CreatedAt     string `json:"created_at"`
	UpdatedBy     int64  `json:"updated_by"`
	UpdatedByRole string `json:"updated_by_role"`
	UpdatedAt     string `json:"updated_at"`
}

type deleteScheduleResponse struct {
	Deleted bool `json:"deleted"`
}

type conflictResponse struct {
	ID      int64  `json:"id,omitempty"`
	Display string `json:"display"`
}

type errorResponse struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Field     string             `json:"field,omitempty"`
	Conflicts []conflictResponse `json:"conflicts,omitempty"`
}

func toScheduleResponse(s *model.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:            s.ID,
		GiverID:       s.GiverID,
		TakerID:       s.TakerID,
		Date:          s.Date.Format(dateLayout),
		StartTime:     s.StartTime.String(),
		EndTime:       s.EndTime.String(),
		Status:        string(s.Status),
		Note:          s.Note,
		CreatedBy:     s.CreatedBy,
		CreatedByRole: string(s.CreatedByRole),
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
		UpdatedBy:     s.UpdatedBy,
		UpdatedByRole: string(s.UpdatedByRole),
		UpdatedAt:     s.UpdatedAt.Format(time.RFC3339),
	}
}

func toScheduleResponses(schedules []*model.Schedule) []scheduleResponse {
	responses := make([]scheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		responses = append(responses, toScheduleResponse(s))
	}
	return responses
}

func toConflictResponses(conflicts []apperr.Conflict) []conflictResponse {
	responses := make([]conflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		responses = append(responses, conflictResponse{ID: c.ID, Display: c.Display})
	}
	return responses
}

func parseDate(s string) (time.Time, error) {
	date, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	return date, nil
}

func parseRole(s string) (model.Role, error) {
	switch model.Role(s) {
	case model.RoleGiver, model.RoleTaker, model.RoleSystem:
		return model.Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func parseStatus(s *string) (*model.ScheduleStatus, error) {
	if s == nil {
		return nil, nil
	}

	status := model.ScheduleStatus(*s)
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", *s)
	}
	return &status, nil
}

func (r scheduleCandidateRequest) toCandidate() (service.ScheduleCandidate, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return service.ScheduleCandidate{}, err
	}

	start, err := model.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return service.ScheduleCandidate{}, fmt.Errorf("start_time must be in HH:MM format")
	}

	end, err := model.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return service.ScheduleCandidate{}, fmt.Errorf("end_time must be in HH:MM format")
	}

	status, err := parseStatus(r.Status)
	if err != nil {
		return service.ScheduleCandidate{}, err
	}

	return service.ScheduleCandidate{
		GiverID:   r.GiverID,
		TakerID:   r.TakerID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Note:      r.Note,
		Status:    status,
	}, nil
}

func (r updateScheduleRequest) toUpdate() (service.ScheduleUpdate, error) {
	var upd service.ScheduleUpdate

	if r.Date != nil {
		date, err := parseDate(*r.Date)
		if err != nil {
			return upd, err
		}
		upd.Date = &date
	}

	if r.StartTime != nil {
		start, err := model.ParseTimeOfDay(*r.StartTime)
		if err != nil {
			return upd, fmt.Errorf("start_time must be in HH:MM format")
		}
		upd.StartTime = &start
	}

	if r.EndTime != nil {
		end, err := model.ParseTimeOfDay(*r.EndTime)
		if err != nil {
			return upd, fmt.Errorf("end_time must be in HH:MM format")
		}
		upd.EndTime = &end
	}

	status, err := parseStatus(r.Status)
	if err != nil {
		return upd, err
	}
	upd.Status = status

	upd.TakerID = r.TakerID
	upd.Note = r.Note

	return upd, nil
}
