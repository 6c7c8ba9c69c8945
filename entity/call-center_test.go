package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInOperationUnsetWindowAlwaysOpen(t *testing.T) {
	cc := CallCenter{}

	assert.True(t, cc.InOperation(time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC)))
	assert.True(t, cc.InOperation(time.Date(2025, 6, 7, 23, 59, 0, 0, time.UTC)))
}

func TestInOperationHourWindow(t *testing.T) {
	cc := CallCenter{Operation: Operation{Open: 8, Closed: 18}}

	assert.False(t, cc.InOperation(time.Date(2025, 6, 2, 7, 59, 0, 0, time.UTC)))
	assert.True(t, cc.InOperation(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)))
	assert.True(t, cc.InOperation(time.Date(2025, 6, 2, 17, 59, 0, 0, time.UTC)))
	assert.False(t, cc.InOperation(time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)))
}

func TestInOperationWeekdays(t *testing.T) {
	cc := CallCenter{Operation: Operation{
		Open:     8,
		Closed:   18,
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
	}}

	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	wednesday := monday.AddDate(0, 0, 2)

	assert.True(t, cc.InOperation(monday))
	assert.False(t, cc.InOperation(tuesday))
	assert.True(t, cc.InOperation(wednesday))
}
