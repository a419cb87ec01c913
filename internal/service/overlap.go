package service

import (
	"context"
	"fmt"
	"time"

	"github.com/consulthub/scheduler-api/internal/apperr"
	"github.com/consulthub/scheduler-api/internal/model"
	"github.com/consulthub/scheduler-api/internal/timeutil"
)

// OverlapDetector ищет живые слоты giver-а, пересекающиеся с кандидатом
type OverlapDetector struct {
	store ScheduleStore
}

func NewOverlapDetector(store ScheduleStore) *OverlapDetector {
	return &OverlapDetector{store: store}
}

// FindConflicts возвращает полный набор конфликтов кандидата с уже
// сохранёнными живыми слотами. excludeID исключает из проверки сам
// обновляемый слот (0 - ничего не исключать).
func (d *OverlapDetector) FindConflicts(
	ctx context.Context,
	giverID int64,
	date time.Time,
	start, end model.TimeOfDay,
	excludeID int64,
) ([]apperr.Conflict, error) {
	existing, err := d.store.FindLiveByGiverAndDate(ctx, giverID, date)
	if err != nil {
		return nil, fmt.Errorf("load live schedules: %w", err)
	}

	var conflicts []apperr.Conflict
	for _, s := range existing {
		if excludeID != 0 && s.ID == excludeID {
			continue
		}

		if timeutil.RangesOverlap(start, end, s.StartTime, s.EndTime) {
			conflicts = append(conflicts, apperr.Conflict{
				ID:      s.ID,
				Date:    s.Date,
				Start:   s.StartTime,
				End:     s.EndTime,
				Display: timeutil.FormatSlotRange(s.Date, s.StartTime, s.EndTime),
			})
		}
	}

	return conflicts, nil
}
