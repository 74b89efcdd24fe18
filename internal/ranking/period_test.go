package ranking

import (
	"testing"
	"time"
	_ "time/tzdata"

	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodStart(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	tests := []struct {
		name   string
		now    time.Time
		period model.PeriodType
		want   time.Time
	}{
		{
			name:   "weekly rolls back to monday",
			now:    time.Date(2025, 3, 6, 15, 0, 0, 0, seoul), // jeudi
			period: model.PeriodWeekly,
			want:   time.Date(2025, 3, 3, 0, 0, 0, 0, seoul),
		},
		{
			name:   "weekly on sunday",
			now:    time.Date(2025, 3, 9, 23, 59, 0, 0, seoul),
			period: model.PeriodWeekly,
			want:   time.Date(2025, 3, 3, 0, 0, 0, 0, seoul),
		},
		{
			name:   "weekly on monday midnight",
			now:    time.Date(2025, 3, 10, 0, 0, 0, 0, seoul),
			period: model.PeriodWeekly,
			want:   time.Date(2025, 3, 10, 0, 0, 0, 0, seoul),
		},
		{
			name:   "weekly uses local date not UTC",
			now:    time.Date(2025, 3, 9, 16, 30, 0, 0, time.UTC), // lundi 01:30 à Séoul
			period: model.PeriodWeekly,
			want:   time.Date(2025, 3, 10, 0, 0, 0, 0, seoul),
		},
		{
			name:   "monthly",
			now:    time.Date(2025, 3, 31, 12, 0, 0, 0, seoul),
			period: model.PeriodMonthly,
			want:   time.Date(2025, 3, 1, 0, 0, 0, 0, seoul),
		},
		{
			name:   "all is the fixed epoch",
			now:    time.Date(2030, 7, 14, 12, 0, 0, 0, seoul),
			period: model.PeriodAll,
			want:   time.Date(2024, 1, 1, 0, 0, 0, 0, seoul),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeriodStart(tt.period, tt.now, seoul)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestPeriodStartNilLocation(t *testing.T) {
	now := time.Date(2025, 3, 6, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-03", dateArg(PeriodStart(model.PeriodWeekly, now, nil)))
}
