package service

import (
	"context"
	"time"

	"github.com/consulthub/scheduler-api/internal/apperr"
	"github.com/consulthub/scheduler-api/internal/model"
	"github.com/consulthub/scheduler-api/internal/timeutil"
	"go.uber.org/zap"
)

// DeleteResult исход мягкого удаления
type DeleteResult int

const (
	DeleteNotFound    DeleteResult = iota // слот никогда не существовал
	DeleteDone                            // слот помечен удалённым
	DeleteAlreadyDone                     // слот уже был удалён, ничего не изменилось
)

// ScheduleUpdate изменяемые поля слота. nil - поле не трогаем.
type ScheduleUpdate struct {
	Date      *time.Time
	StartTime *model.TimeOfDay
	EndTime   *model.TimeOfDay
	TakerID   *int64
	Status    *model.ScheduleStatus
	Note      *string
}

// HasTimeFields проверяет меняет ли обновление дату или время слота
func (u ScheduleUpdate) HasTimeFields() bool {
	return u.Date != nil || u.StartTime != nil || u.EndTime != nil
}

// ScheduleService оркестратор сценариев работы со слотами. Каждый
// мутирующий сценарий выполняется в одной транзакции, чтобы проверка
// пересечений и запись были атомарны относительно других вызовов.
type ScheduleService struct {
	tx        TxRunner
	schedules ScheduleStore
	users     UserStore
	validator *ScheduleValidator
	detector  *OverlapDetector
	logger    *zap.Logger
	now       func() time.Time
}

func NewScheduleService(
	tx TxRunner,
	schedules ScheduleStore,
	users UserStore,
	validator *ScheduleValidator,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		tx:        tx,
		schedules: schedules,
		users:     users,
		validator: validator,
		detector:  NewOverlapDetector(schedules),
		logger:    logger,
		now:       time.Now,
	}
}

// CreateSchedules создаёт пачку слотов атомарно: любой конфликт или
// ошибка валидации отменяет всю пачку целиком
func (s *ScheduleService) CreateSchedules(
	ctx context.Context,
	candidates []ScheduleCandidate,
	operatorID int64,
	operatorRole model.Role,
) ([]*model.Schedule, error) {
	if len(candidates) == 0 {
		return nil, apperr.NewValidation("schedules", "at least one schedule is required")
	}

	var created []*model.Schedule

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.checkOperator(ctx, operatorID); err != nil {
			return err
		}

		var conflicts []apperr.Conflict
		for i, c := range candidates {
			if err := s.validator.Validate(c, true); err != nil {
				return err
			}

			if c.Status != nil {
				if !c.Status.Valid() {
					return apperr.NewValidation("status", "unknown schedule status")
				}
				if *c.Status == model.StatusCancelled {
					return apperr.NewValidation("status", "cancelled is only reachable through delete")
				}
			}

			found, err := s.detector.FindConflicts(ctx, c.GiverID, c.Date, c.StartTime, c.EndTime, 0)
			if err != nil {
				return apperr.NewPersistence("detect conflicts", err)
			}
			conflicts = append(conflicts, found...)

			// Кандидаты одной пачки тоже не могут пересекаться между собой
			for _, prev := range candidates[:i] {
				if prev.GiverID != c.GiverID || !prev.Date.Equal(c.Date) {
					continue
				}
				if timeutil.RangesOverlap(c.StartTime, c.EndTime, prev.StartTime, prev.EndTime) {
					conflicts = append(conflicts, apperr.Conflict{
						Date:    prev.Date,
						Start:   prev.StartTime,
						End:     prev.EndTime,
						Display: timeutil.FormatSlotRange(prev.Date, prev.StartTime, prev.EndTime),
					})
				}
			}
		}

		if len(conflicts) > 0 {
			return &apperr.ConflictError{Conflicts: conflicts}
		}

		now := s.now()
		created = make([]*model.Schedule, 0, len(candidates))
		for _, c := range candidates {
			schedule := &model.Schedule{
				GiverID:   c.GiverID,
				TakerID:   c.TakerID,
				Date:      c.Date,
				StartTime: c.StartTime,
				EndTime:   c.EndTime,
				Status:    ResolveInitialStatus(operatorRole, c.Status),
				Note:      c.Note,

				// При создании блоки created и updated совпадают
				CreatedBy:     operatorID,
				CreatedByRole: operatorRole,
				CreatedAt:     now,
				UpdatedBy:     operatorID,
				UpdatedByRole: operatorRole,
				UpdatedAt:     now,
			}
			created = append(created, schedule)
		}

		if err := s.schedules.InsertBatch(ctx, created); err != nil {
			if apperr.IsConflict(err) {
				return err
			}
			return apperr.NewPersistence("insert schedules", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedules created",
		zap.Int("count", len(created)),
		zap.Int64("operator_id", operatorID),
		zap.String("operator_role", string(operatorRole)),
	)

	return created, nil
}

// GetSchedule получает живой слот. Мягко удалённый слот для этого
// сценария не существует.
func (s *ScheduleService) GetSchedule(ctx context.Context, id int64) (*model.Schedule, error) {
	schedule, err := s.schedules.FindLiveByID(ctx, id)
	if err != nil {
		return nil, apperr.NewPersistence("get schedule", err)
	}

	if schedule == nil {
		return nil, apperr.NewNotFound("schedule", id)
	}

	return schedule, nil
}

// ListSchedules получает живые слоты по фильтрам
func (s *ScheduleService) ListSchedules(ctx context.Context, filter model.ScheduleFilter) ([]*model.Schedule, error) {
	schedules, err := s.schedules.List(ctx, filter)
	if err != nil {
		return nil, apperr.NewPersistence("list schedules", err)
	}

	return schedules, nil
}

// UpdateSchedule применяет частичное обновление слота. Если меняется
// дата или время, пересечения проверяются заново по эффективным
// значениям, исключая сам слот.
func (s *ScheduleService) UpdateSchedule(
	ctx context.Context,
	id int64,
	operatorID int64,
	operatorRole model.Role,
	upd ScheduleUpdate,
) (*model.Schedule, error) {
	var updated *model.Schedule

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.checkOperator(ctx, operatorID); err != nil {
			return err
		}

		schedule, err := s.schedules.FindLiveByID(ctx, id)
		if err != nil {
			return apperr.NewPersistence("get schedule", err)
		}
		if schedule == nil {
			return apperr.NewNotFound("schedule", id)
		}

		if upd.Status != nil {
			if !upd.Status.Valid() {
				return apperr.NewValidation("status", "unknown schedule status")
			}
			if *upd.Status == model.StatusCancelled {
				return apperr.NewValidation("status", "cancelled is only reachable through delete")
			}
		}

		if upd.HasTimeFields() {
			// Эффективные значения: не указанные поля берём из текущего слота
			date := schedule.Date
			start := schedule.StartTime
			end := schedule.EndTime
			if upd.Date != nil {
				date = *upd.Date
			}
			if upd.StartTime != nil {
				start = *upd.StartTime
			}
			if upd.EndTime != nil {
				end = *upd.EndTime
			}

			candidate := ScheduleCandidate{
				GiverID:   schedule.GiverID,
				TakerID:   schedule.TakerID,
				Date:      date,
				StartTime: start,
				EndTime:   end,
				Note:      upd.Note,
			}
			if err := s.validator.Validate(candidate, false); err != nil {
				return err
			}

			conflicts, err := s.detector.FindConflicts(ctx, schedule.GiverID, date, start, end, schedule.ID)
			if err != nil {
				return apperr.NewPersistence("detect conflicts", err)
			}
			if len(conflicts) > 0 {
				return &apperr.ConflictError{Conflicts: conflicts}
			}

			schedule.Date = date
			schedule.StartTime = start
			schedule.EndTime = end
		}

		if upd.TakerID != nil {
			if *upd.TakerID <= 0 {
				return apperr.NewValidation("taker_id", "taker_id must be a positive integer")
			}
			schedule.TakerID = upd.TakerID
		}
		if upd.Status != nil {
			schedule.Status = *upd.Status
		}
		if upd.Note != nil {
			if len([]rune(*upd.Note)) > model.MaxNoteLength {
				return apperr.NewValidation("note", "note is too long")
			}
			schedule.Note = upd.Note
		}

		schedule.UpdatedBy = operatorID
		schedule.UpdatedByRole = operatorRole
		schedule.UpdatedAt = s.now()

		if err := s.schedules.Save(ctx, schedule); err != nil {
			if apperr.IsConflict(err) {
				return err
			}
			return apperr.NewPersistence("save schedule", err)
		}

		updated = schedule
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedule updated",
		zap.Int64("schedule_id", id),
		zap.Int64("operator_id", operatorID),
		zap.Bool("time_changed", upd.HasTimeFields()),
	)

	return updated, nil
}

// DeleteSchedule мягко удаляет слот: строка остаётся, статус становится
// cancelled, заполняются поля-надгробия. Повторное удаление - no-op.
func (s *ScheduleService) DeleteSchedule(
	ctx context.Context,
	id int64,
	operatorID int64,
	operatorRole model.Role,
) (DeleteResult, error) {
	result := DeleteNotFound

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Оператор при удалении опционален, но если он указан, то
		// должен существовать
		if operatorID > 0 {
			if err := s.checkOperator(ctx, operatorID); err != nil {
				return err
			}
		}

		schedule, err := s.schedules.FindByIDIncludingDeleted(ctx, id)
		if err != nil {
			return apperr.NewPersistence("get schedule", err)
		}

		if schedule == nil {
			result = DeleteNotFound
			return nil
		}

		if schedule.IsDeleted() {
			// Удаление терминально: отметка времени не перезаписывается
			result = DeleteAlreadyDone
			return nil
		}

		now := s.now()
		schedule.Status = model.StatusCancelled
		schedule.DeletedAt = &now
		if operatorID > 0 {
			schedule.DeletedBy = &operatorID
			schedule.DeletedByRole = &operatorRole
			schedule.UpdatedBy = operatorID
			schedule.UpdatedByRole = operatorRole
		}
		schedule.UpdatedAt = now

		if err := s.schedules.Save(ctx, schedule); err != nil {
			return apperr.NewPersistence("save schedule", err)
		}

		result = DeleteDone
		return nil
	})
	if err != nil {
		return DeleteNotFound, err
	}

	if result == DeleteDone {
		s.logger.Info("Schedule deleted",
			zap.Int64("schedule_id", id),
			zap.Int64("operator_id", operatorID),
		)
	}

	return result, nil
}

// CompleteElapsed переводит живые принятые слоты с прошедшим временем в
// completed. Вызывается фоновой задачей.
func (s *ScheduleService) CompleteElapsed(ctx context.Context) (int, error) {
	completed := 0

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.now()

		elapsed, err := s.schedules.FindElapsedAccepted(ctx, now)
		if err != nil {
			return apperr.NewPersistence("find elapsed schedules", err)
		}

		for _, schedule := range elapsed {
			schedule.Status = model.StatusCompleted
			schedule.UpdatedBy = 0 // автоматический перевод, актора нет
			schedule.UpdatedByRole = model.RoleSystem
			schedule.UpdatedAt = now

			if err := s.schedules.Save(ctx, schedule); err != nil {
				return apperr.NewPersistence("save schedule", err)
			}
			completed++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if completed > 0 {
		s.logger.Info("Elapsed schedules completed", zap.Int("count", completed))
	}

	return completed, nil
}

// checkOperator проверяет что оператор мутации существует
func (s *ScheduleService) checkOperator(ctx context.Context, operatorID int64) error {
	if operatorID <= 0 {
		return apperr.NewValidation("operator_id", "operator_id must be a positive integer")
	}

	exists, err := s.users.ActorExists(ctx, operatorID)
	if err != nil {
		return apperr.NewPersistence("check operator", err)
	}
	if !exists {
		return apperr.NewNotFound("user", operatorID)
	}

	return nil
}
