package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSlots(t *testing.T) {
	slots := DefaultSlots()

	require.Len(t, slots, 26)
	assert.Equal(t, "10:00", slots[0])
	assert.Equal(t, "10:30", slots[1])
	assert.Equal(t, "22:30", slots[len(slots)-1])

	slots[0] = "changed"
	assert.Equal(t, "10:00", DefaultSlots()[0], "callers get their own copy")
}

func TestEffectiveSlots(t *testing.T) {
	tests := []struct {
		name       string
		configured []string
		want       []string
	}{
		{"nil falls back", nil, DefaultSlots()},
		{"empty falls back", []string{}, DefaultSlots()},
		{"valid list kept in order", []string{"11:00", "09:30"}, []string{"11:00", "09:30"}},
		{"one bad entry falls back", []string{"11:00", "noon"}, DefaultSlots()},
		{"unpadded entry falls back", []string{"9:30"}, DefaultSlots()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveSlots(tt.configured))
		})
	}
}

func TestNormalizeSlots(t *testing.T) {
	got, err := NormalizeSlots([]string{"14:00", "10:00", "14:00", "09:30"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30", "10:00", "14:00"}, got)

	_, err = NormalizeSlots([]string{"10:00", "25:00"})
	assert.ErrorContains(t, err, `"25:00"`)
}

func TestAnnotateSlots(t *testing.T) {
	reservations := []Reservation{
		{TimeSlot: "10:00", Status: StatusRequested},
		{TimeSlot: "11:00", Status: StatusCancelled},
		{TimeSlot: "15:00", Status: StatusConfirmed},
	}
	slots := []string{"10:00", "10:30", "11:00"}

	t.Run("cancelled reservations block", func(t *testing.T) {
		got := AnnotateSlots(slots, reservations, true)
		assert.Equal(t, []Slot{
			{Time: "10:00", Reserved: true},
			{Time: "10:30", Reserved: false},
			{Time: "11:00", Reserved: true},
		}, got)
	})

	t.Run("cancelled reservations free the slot", func(t *testing.T) {
		got := AnnotateSlots(slots, reservations, false)
		assert.Equal(t, []Slot{
			{Time: "10:00", Reserved: true},
			{Time: "10:30", Reserved: false},
			{Time: "11:00", Reserved: false},
		}, got)
	})

	t.Run("reservations outside the list are ignored", func(t *testing.T) {
		got := AnnotateSlots([]string{"10:30"}, reservations, true)
		assert.Equal(t, []Slot{{Time: "10:30"}}, got)
	})
}
