package service

import (
	"context"
	"time"

	"github.com/consulthub/scheduler-api/internal/model"
)

// ScheduleStore порт хранилища слотов. Реализуется pgx-репозиторием,
// в тестах подменяется in-memory фейком.
type ScheduleStore interface {
	FindLiveByGiverAndDate(ctx context.Context, giverID int64, date time.Time) ([]*model.Schedule, error)
	FindLiveByID(ctx context.Context, id int64) (*model.Schedule, error)
	FindByIDIncludingDeleted(ctx context.Context, id int64) (*model.Schedule, error)
	List(ctx context.Context, filter model.ScheduleFilter) ([]*model.Schedule, error)
	InsertBatch(ctx context.Context, schedules []*model.Schedule) error
	Save(ctx context.Context, schedule *model.Schedule) error
	FindElapsedAccepted(ctx context.Context, now time.Time) ([]*model.Schedule, error)
}

// UserStore порт справочника участников
type UserStore interface {
	ActorExists(ctx context.Context, id int64) (bool, error)
}

// TxRunner выполняет сценарий использования внутри одной транзакции,
// чтобы проверка пересечений и запись были атомарны
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
