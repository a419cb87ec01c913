package timeutil

import (
	"fmt"
	"time"

	"github.com/consulthub/scheduler-api/internal/model"
)

// Названия дней недели для отображения конфликтов (продуктовый формат)
var weekdayNames = [7]string{
	"週日", // Sunday
	"週一",
	"週二",
	"週三",
	"週四",
	"週五",
	"週六",
}

// WeekdayName возвращает отображаемое название дня недели
func WeekdayName(d time.Weekday) string {
	return weekdayNames[int(d)%7]
}

// FormatSlotRange форматирует слот для показа пользователю:
// "2024/01/15（週一） 09:00~10:00"
func FormatSlotRange(date time.Time, start, end model.TimeOfDay) string {
	return fmt.Sprintf("%s（%s） %s~%s",
		date.Format("2006/01/02"),
		WeekdayName(date.Weekday()),
		start.String(),
		end.String(),
	)
}

// FormatDate форматирует только дату
func FormatDate(date time.Time) string {
	return date.Format("2006/01/02")
}
