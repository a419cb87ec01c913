package model

import "time"

// User участник бронирования. Записи создаются и управляются внешним
// сервисом пользователей, движок расписаний только проверяет их наличие.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
