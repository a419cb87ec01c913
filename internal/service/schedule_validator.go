package service

import (
	"fmt"
	"time"

	"github.com/consulthub/scheduler-api/internal/apperr"
	"github.com/consulthub/scheduler-api/internal/model"
	"github.com/consulthub/scheduler-api/internal/timeutil"
)

// ScheduleCandidate предлагаемый слот до сохранения
type ScheduleCandidate struct {
	GiverID   int64
	TakerID   *int64
	Date      time.Time
	StartTime model.TimeOfDay
	EndTime   model.TimeOfDay
	Note      *string
	Status    *model.ScheduleStatus // явный начальный статус (только для system)
}

// Сколько месяцев вперёд разрешено создавать слоты
const maxMonthsAhead = 3

// ScheduleValidator проверяет структурную корректность слота до обращения
// к хранилищу. Чистая проверка без побочных эффектов.
type ScheduleValidator struct {
	rest timeutil.RestWindow
	now  func() time.Time
}

func NewScheduleValidator(rest timeutil.RestWindow) *ScheduleValidator {
	return &ScheduleValidator{
		rest: rest,
		now:  time.Now,
	}
}

// Validate проверяет кандидата. checkDateBounds включает проверку окна дат
// (не раньше сегодня, не дальше трёх месяцев вперёд).
// Проверки идут по порядку, первая провалившаяся возвращает ошибку.
func (v *ScheduleValidator) Validate(c ScheduleCandidate, checkDateBounds bool) error {
	if c.GiverID <= 0 {
		return apperr.NewValidation("giver_id", "giver_id must be a positive integer")
	}

	if c.TakerID != nil && *c.TakerID <= 0 {
		return apperr.NewValidation("taker_id", "taker_id must be a positive integer")
	}

	if checkDateBounds {
		if err := v.validateDateBounds(c.Date); err != nil {
			return err
		}
	}

	if !c.StartTime.InRange() {
		return apperr.NewValidation("start_time", "start_time is out of range")
	}
	if !c.EndTime.InRange() {
		return apperr.NewValidation("end_time", "end_time is out of range")
	}

	if !c.StartTime.Before(c.EndTime) {
		return apperr.NewValidation("end_time", "end_time must be after start_time")
	}

	if v.rest.Contains(c.StartTime) {
		return apperr.NewValidation("start_time",
			fmt.Sprintf("start_time falls into the rest window %s~%s", v.rest.Start, v.rest.End))
	}
	if v.rest.Contains(c.EndTime) {
		return apperr.NewValidation("end_time",
			fmt.Sprintf("end_time falls into the rest window %s~%s", v.rest.Start, v.rest.End))
	}

	if c.Note != nil && len([]rune(*c.Note)) > model.MaxNoteLength {
		return apperr.NewValidation("note",
			fmt.Sprintf("note must be at most %d characters", model.MaxNoteLength))
	}

	return nil
}

func (v *ScheduleValidator) validateDateBounds(date time.Time) error {
	now := v.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	if day.Before(today) {
		return apperr.NewValidation("date", "date must not be in the past")
	}

	// Прибавляем месяцы с ограничением дня, чтобы 31-е число не
	// переполнялось в следующий месяц
	limit := timeutil.AddMonthsClamped(today, maxMonthsAhead)
	if day.After(limit) {
		return apperr.NewValidation("date",
			fmt.Sprintf("date must not be more than %d months ahead", maxMonthsAhead))
	}

	return nil
}
