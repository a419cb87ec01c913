package model

import "time"

type ScheduleStatus string

const (
	StatusDraft     ScheduleStatus = "draft"
	StatusAvailable ScheduleStatus = "available"
	StatusPending   ScheduleStatus = "pending"
	StatusAccepted  ScheduleStatus = "accepted"
	StatusRejected  ScheduleStatus = "rejected"
	StatusCancelled ScheduleStatus = "cancelled"
	StatusCompleted ScheduleStatus = "completed"
)

// Valid проверяет что статус входит в известный набор
func (s ScheduleStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusAvailable, StatusPending, StatusAccepted,
		StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type Role string

const (
	RoleGiver  Role = "giver"
	RoleTaker  Role = "taker"
	RoleSystem Role = "system"
)

// Schedule слот консультации: временной интервал, который предлагает giver
// и может занять taker
type Schedule struct {
	ID        int64          `json:"id"`
	GiverID   int64          `json:"giver_id"`
	TakerID   *int64         `json:"taker_id"` // указатель - слот может быть не занят
	Date      time.Time      `json:"date"`
	StartTime TimeOfDay      `json:"start_time"`
	EndTime   TimeOfDay      `json:"end_time"`
	Status    ScheduleStatus `json:"status"`
	Note      *string        `json:"note"`

	CreatedBy     int64     `json:"created_by"`
	CreatedByRole Role      `json:"created_by_role"`
	CreatedAt     time.Time `json:"created_at"`

	UpdatedBy     int64     `json:"updated_by"`
	UpdatedByRole Role      `json:"updated_by_role"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Все три поля заполняются только при мягком удалении
	DeletedBy     *int64     `json:"deleted_by"`
	DeletedByRole *Role      `json:"deleted_by_role"`
	DeletedAt     *time.Time `json:"deleted_at"`
}

// IsDeleted проверяет помечен ли слот удалённым
func (s *Schedule) IsDeleted() bool {
	return s.DeletedAt != nil
}

// MaxNoteLength максимальная длина заметки слота
const MaxNoteLength = 265

// ScheduleFilter фильтры списочного запроса, объединяются по AND.
// Мягко удалённые слоты исключаются всегда.
type ScheduleFilter struct {
	GiverID *int64
	TakerID *int64
	Status  *ScheduleStatus
}
