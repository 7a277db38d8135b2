package month_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/gym-scheduler/internal/lib/month"
)

func TestWindow(t *testing.T) {
	now := time.Date(2024, time.March, 17, 15, 30, 0, 0, time.UTC)
	start, end := month.Window(now)

	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestWindow_December(t *testing.T) {
	now := time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC)
	start, end := month.Window(now)

	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestSameMonth(t *testing.T) {
	a := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC)
	c := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, month.SameMonth(a, b))
	assert.False(t, month.SameMonth(a, c))
}

func TestDaysUntil(t *testing.T) {
	from := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"same instant", from, 0},
		{"past", from.AddDate(0, 0, -1), 0},
		{"exactly three days", from.AddDate(0, 0, 3), 3},
		{"partial day rounds up", from.Add(36 * time.Hour), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, month.DaysUntil(from, tt.to))
		})
	}
}
