package rankings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMondayOf_HandlesEveryWeekday(t *testing.T) {
	// 2026-07-27 is a Monday.
	monday := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		assert.Equal(t, monday, mondayOf(day), "day offset %d", i)
	}
}

func TestSundayOf_IsSixDaysAfterMonday(t *testing.T) {
	monday := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)
	sunday := sundayOf(monday)
	assert.Equal(t, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), sunday)
}
