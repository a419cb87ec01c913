package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:30", TimeOfDay{9, 30}, false},
		{"00:00", TimeOfDay{0, 0}, false},
		{"23:59", TimeOfDay{23, 59}, false},
		{"24:00", TimeOfDay{}, true},
		{"12:60", TimeOfDay{}, true},
		{"-1:00", TimeOfDay{}, true},
		{"garbage", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
		// Хвост после минут и однозначные минуты - ошибка формата
		{"09:30pm", TimeOfDay{}, true},
		{"9:3", TimeOfDay{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayBefore(t *testing.T) {
	assert.True(t, NewTimeOfDay(9, 0).Before(NewTimeOfDay(9, 1)))
	assert.True(t, NewTimeOfDay(8, 59).Before(NewTimeOfDay(9, 0)))
	assert.False(t, NewTimeOfDay(9, 0).Before(NewTimeOfDay(9, 0)))
	assert.False(t, NewTimeOfDay(10, 0).Before(NewTimeOfDay(9, 59)))
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:05", NewTimeOfDay(9, 5).String())
	assert.Equal(t, "23:59", NewTimeOfDay(23, 59).String())
	assert.Equal(t, "00:00", NewTimeOfDay(0, 0).String())
}
