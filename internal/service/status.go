package service

import "github.com/consulthub/scheduler-api/internal/model"

// ResolveInitialStatus определяет начальный статус слота по роли создателя.
// Taker запрашивает время - слот сразу pending, giver публикует
// доступность - слот available. System и неизвестные роли получают draft,
// либо явный статус, если он передан.
func ResolveInitialStatus(role model.Role, explicit *model.ScheduleStatus) model.ScheduleStatus {
	switch role {
	case model.RoleTaker:
		return model.StatusPending
	case model.RoleGiver:
		return model.StatusAvailable
	default:
		if explicit != nil {
			return *explicit
		}
		return model.StatusDraft
	}
}
