package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func TestParseWeekdays(t *testing.T) {
	days, invalid := ParseWeekdays(" 4,0, 2,4,9,x,")
	assert.Equal(t, []int{0, 2, 4}, days)
	assert.Equal(t, []string{"9", "x"}, invalid)
}

func TestRecurrenceRule_ShouldRunOn(t *testing.T) {
	// 2024-01-01 is a Monday
	created := date(2024, time.January, 1)

	t.Run("daily interval", func(t *testing.T) {
		rule := RecurrenceRule{Frequency: FrequencyDaily, Interval: 2, CreatedAt: created}
		assert.True(t, rule.ShouldRunOn(date(2024, time.January, 1)))
		assert.False(t, rule.ShouldRunOn(date(2024, time.January, 2)))
		assert.True(t, rule.ShouldRunOn(date(2024, time.January, 3)))
	})

	t.Run("daily with weekday filter", func(t *testing.T) {
		rule := RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, Weekdays: "0,4", CreatedAt: created}
		assert.True(t, rule.ShouldRunOn(date(2024, time.January, 5)))
		assert.False(t, rule.ShouldRunOn(date(2024, time.January, 6)))
	})

	t.Run("never before creation", func(t *testing.T) {
		rule := RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, CreatedAt: created}
		assert.False(t, rule.ShouldRunOn(date(2023, time.December, 31)))
	})

	t.Run("weekly defaults to creation weekday", func(t *testing.T) {
		rule := RecurrenceRule{Frequency: FrequencyWeekly, Interval: 1, CreatedAt: created}
		assert.True(t, rule.ShouldRunOn(date(2024, time.January, 8)))
		assert.False(t, rule.ShouldRunOn(date(2024, time.January, 9)))
	})

	t.Run("biweekly on listed days", func(t *testing.T) {
		rule := RecurrenceRule{Frequency: FrequencyWeekly, Interval: 2, Weekdays: "2", CreatedAt: created}
		assert.True(t, rule.ShouldRunOn(date(2024, time.January, 3)))
		assert.False(t, rule.ShouldRunOn(date(2024, time.January, 10)))
		assert.True(t, rule.ShouldRunOn(date(2024, time.January, 17)))
	})

	t.Run("monthly on creation day", func(t *testing.T) {
		rule := RecurrenceRule{Frequency: FrequencyMonthly, Interval: 3, CreatedAt: date(2024, time.January, 15)}
		assert.True(t, rule.ShouldRunOn(date(2024, time.April, 15)))
		assert.False(t, rule.ShouldRunOn(date(2024, time.February, 15)))
		assert.False(t, rule.ShouldRunOn(date(2024, time.April, 16)))
	})
}

func TestActivityStatus_Transitions(t *testing.T) {
	assert.True(t, ActivityArrived.CanTransitionTo(ActivityInProgress))
	assert.True(t, ActivityToCollect.CanTransitionTo(ActivityPaid))
	assert.False(t, ActivityArrived.CanTransitionTo(ActivityDone))
	assert.False(t, ActivityPaid.CanTransitionTo(ActivityCanceled))
	assert.True(t, ActivityCanceled.IsTerminal())
	assert.False(t, ActivityStatus("LOST").IsValid())
}

func TestStockMove_Delta(t *testing.T) {
	assert.Equal(t, 5, StockMove{Type: StockMoveIn, Qty: 5}.Delta())
	assert.Equal(t, -3, StockMove{Type: StockMoveOut, Qty: 3}.Delta())
	assert.Equal(t, -2, StockMove{Type: StockMoveLoss, Qty: -2}.Delta())
	assert.Equal(t, -4, StockMove{Type: StockMoveAdjust, Qty: -4}.Delta())
}
