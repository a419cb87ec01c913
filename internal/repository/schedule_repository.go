package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/consulthub/scheduler-api/internal/apperr"
	"github.com/consulthub/scheduler-api/internal/model"
	"github.com/consulthub/scheduler-api/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const scheduleColumns = `
	id, giver_id, taker_id, date, start_time, end_time, status, note,
	created_by, created_by_role, created_at,
	updated_by, updated_by_role, updated_at,
	deleted_by, deleted_by_role, deleted_at`

type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// FindLiveByGiverAndDate получает живые (не удалённые) слоты giver-а на дату
func (r *ScheduleRepository) FindLiveByGiverAndDate(ctx context.Context, giverID int64, date time.Time) ([]*model.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE giver_id = $1
		  AND date = $2
		  AND deleted_at IS NULL
		ORDER BY start_time
	`

	rows, err := base.QuerierFrom(ctx, r.pool).Query(ctx, query, giverID, date)
	if err != nil {
		return nil, fmt.Errorf("find live schedules by giver and date: %w", err)
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// FindLiveByID получает живой слот по ID
func (r *ScheduleRepository) FindLiveByID(ctx context.Context, id int64) (*model.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE id = $1 AND deleted_at IS NULL
	`

	schedule, err := scanSchedule(base.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find live schedule by id: %w", err)
	}

	return schedule, nil
}

// FindByIDIncludingDeleted получает слот по ID включая мягко удалённые.
// Нужен для идемпотентной проверки при удалении.
func (r *ScheduleRepository) FindByIDIncludingDeleted(ctx context.Context, id int64) (*model.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE id = $1
	`

	schedule, err := scanSchedule(base.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find schedule by id: %w", err)
	}

	return schedule, nil
}

// List получает живые слоты по фильтрам
func (r *ScheduleRepository) List(ctx context.Context, filter model.ScheduleFilter) ([]*model.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE deleted_at IS NULL`

	var args []any
	if filter.GiverID != nil {
		args = append(args, *filter.GiverID)
		query += fmt.Sprintf(" AND giver_id = $%d", len(args))
	}
	if filter.TakerID != nil {
		args = append(args, *filter.TakerID)
		query += fmt.Sprintf(" AND taker_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY date, start_time"

	rows, err := base.QuerierFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// InsertBatch вставляет слоты, присваивая им ID. Вызывается внутри
// транзакции сценария, поэтому пачка атомарна.
func (r *ScheduleRepository) InsertBatch(ctx context.Context, schedules []*model.Schedule) error {
	query := `
		INSERT INTO schedules (
			giver_id, taker_id, date, start_time, end_time, status, note,
			created_by, created_by_role, created_at,
			updated_by, updated_by_role, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	q := base.QuerierFrom(ctx, r.pool)
	for _, s := range schedules {
		err := q.QueryRow(
			ctx, query,
			s.GiverID,
			s.TakerID,
			s.Date,
			encodeTime(s.StartTime),
			encodeTime(s.EndTime),
			s.Status,
			s.Note,
			s.CreatedBy,
			s.CreatedByRole,
			s.CreatedAt,
			s.UpdatedBy,
			s.UpdatedByRole,
			s.UpdatedAt,
		).Scan(&s.ID)

		if err != nil {
			if isOverlapViolation(err) {
				// Проигрыш гонки: параллельная транзакция успела занять
				// пересекающийся интервал
				return &apperr.ConflictError{}
			}
			return fmt.Errorf("insert schedule: %w", err)
		}
	}

	return nil
}

// Save сохраняет изменённый слот целиком
func (r *ScheduleRepository) Save(ctx context.Context, s *model.Schedule) error {
	query := `
		UPDATE schedules
		SET giver_id = $2,
		    taker_id = $3,
		    date = $4,
		    start_time = $5,
		    end_time = $6,
		    status = $7,
		    note = $8,
		    updated_by = $9,
		    updated_by_role = $10,
		    updated_at = $11,
		    deleted_by = $12,
		    deleted_by_role = $13,
		    deleted_at = $14
		WHERE id = $1
	`

	tag, err := base.QuerierFrom(ctx, r.pool).Exec(
		ctx, query,
		s.ID,
		s.GiverID,
		s.TakerID,
		s.Date,
		encodeTime(s.StartTime),
		encodeTime(s.EndTime),
		s.Status,
		s.Note,
		s.UpdatedBy,
		s.UpdatedByRole,
		s.UpdatedAt,
		s.DeletedBy,
		s.DeletedByRole,
		s.DeletedAt,
	)

	if err != nil {
		if isOverlapViolation(err) {
			return &apperr.ConflictError{}
		}
		return fmt.Errorf("save schedule: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("schedule %d not found", s.ID)
	}

	return nil
}

// FindElapsedAccepted получает живые принятые слоты, чьё время уже прошло
func (r *ScheduleRepository) FindElapsedAccepted(ctx context.Context, now time.Time) ([]*model.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE deleted_at IS NULL
		  AND status = $1
		  AND (date < $2 OR (date = $2 AND end_time <= $3))
		ORDER BY date, start_time
	`

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	nowTime := encodeTime(model.NewTimeOfDay(now.Hour(), now.Minute()))

	rows, err := base.QuerierFrom(ctx, r.pool).Query(ctx, query, model.StatusAccepted, today, nowTime)
	if err != nil {
		return nil, fmt.Errorf("find elapsed accepted schedules: %w", err)
	}
	defer rows.Close()

	return scanSchedules(rows)
}

func scanSchedule(row pgx.Row) (*model.Schedule, error) {
	var (
		s          model.Schedule
		start, end pgtype.Time
	)

	err := row.Scan(
		&s.ID,
		&s.GiverID,
		&s.TakerID,
		&s.Date,
		&start,
		&end,
		&s.Status,
		&s.Note,
		&s.CreatedBy,
		&s.CreatedByRole,
		&s.CreatedAt,
		&s.UpdatedBy,
		&s.UpdatedByRole,
		&s.UpdatedAt,
		&s.DeletedBy,
		&s.DeletedByRole,
		&s.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	s.StartTime = decodeTime(start)
	s.EndTime = decodeTime(end)

	return &s, nil
}

func scanSchedules(rows pgx.Rows) ([]*model.Schedule, error) {
	var schedules []*model.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}

	return schedules, nil
}

func encodeTime(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{
		Microseconds: int64(t.Minutes()) * 60 * 1_000_000,
		Valid:        true,
	}
}

func decodeTime(t pgtype.Time) model.TimeOfDay {
	minutes := int(t.Microseconds / (60 * 1_000_000))
	return model.NewTimeOfDay(minutes/60, minutes%60)
}

// isOverlapViolation распознаёт срабатывание exclusion constraint на
// пересечение живых слотов (SQLSTATE 23P01)
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}
