package timeutil

import (
	"time"

	"github.com/consulthub/scheduler-api/internal/model"
)

// RangesOverlap проверяет пересечение двух полуоткрытых интервалов [start, end).
// Единственное авторитетное определение пересечения: соседние интервалы
// (конец одного равен началу другого) не пересекаются.
func RangesOverlap(startA, endA, startB, endB model.TimeOfDay) bool {
	return startA.Minutes() < endB.Minutes() && startB.Minutes() < endA.Minutes()
}

// RestWindow окно отдыха [Start, End), в которое нельзя ставить слоты.
// Если End не позже Start, окно переходит через полночь:
// 22:00-06:00 покрывает [22:00,24:00) и [00:00,06:00).
type RestWindow struct {
	Start model.TimeOfDay
	End   model.TimeOfDay
}

// DefaultRestWindow окно отдыха по умолчанию
func DefaultRestWindow() RestWindow {
	return RestWindow{
		Start: model.NewTimeOfDay(0, 0),
		End:   model.NewTimeOfDay(8, 0),
	}
}

// Contains проверяет попадает ли время внутрь окна отдыха
func (w RestWindow) Contains(t model.TimeOfDay) bool {
	start, end, m := w.Start.Minutes(), w.End.Minutes(), t.Minutes()

	if start < end {
		return m >= start && m < end
	}

	// Окно через полночь
	return m >= start || m < end
}

// AddMonthsClamped прибавляет месяцы к дате, ограничивая день последним
// валидным днём целевого месяца (31 января + 1 месяц = 28/29 февраля,
// а не переполнение в март)
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)

	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	// День 0 следующего месяца - последний день текущего
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
