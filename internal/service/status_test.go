package service

import (
	"testing"

	"github.com/consulthub/scheduler-api/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestResolveInitialStatus(t *testing.T) {
	explicit := model.StatusAvailable

	tests := []struct {
		name     string
		role     model.Role
		explicit *model.ScheduleStatus
		want     model.ScheduleStatus
	}{
		{"taker creates pending", model.RoleTaker, nil, model.StatusPending},
		{"giver creates available", model.RoleGiver, nil, model.StatusAvailable},
		{"system creates draft", model.RoleSystem, nil, model.StatusDraft},
		{"system with explicit status", model.RoleSystem, &explicit, model.StatusAvailable},
		{"unknown role falls back to draft", model.Role("auditor"), nil, model.StatusDraft},
		{"taker ignores explicit status", model.RoleTaker, &explicit, model.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveInitialStatus(tt.role, tt.explicit))
		})
	}
}
