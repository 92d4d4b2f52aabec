package domain

import (
	"fmt"
	"slices"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/validator"
)

// Default opening hours used when a shop has no usable slot list.
const (
	DefaultFirstSlot    = 10 * 60
	DefaultLastSlot     = 22*60 + 30
	DefaultSlotInterval = 30
)

// Slot is one bookable start time on a given day.
type Slot struct {
	Time     string `json:"time"`
	Reserved bool   `json:"reserved"`
}

// DefaultSlots returns a fresh copy of the 10:00 to 22:30 half-hour grid.
func DefaultSlots() []string {
	slots := make([]string, 0, (DefaultLastSlot-DefaultFirstSlot)/DefaultSlotInterval+1)
	for m := DefaultFirstSlot; m <= DefaultLastSlot; m += DefaultSlotInterval {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// EffectiveSlots returns configured when every entry is a valid HH:MM time,
// and the default grid when it is empty or holds anything else.
func EffectiveSlots(configured []string) []string {
	if len(configured) == 0 {
		return DefaultSlots()
	}
	for _, s := range configured {
		if !validator.IsTimeSlot(s) {
			return DefaultSlots()
		}
	}
	return slices.Clone(configured)
}

// NormalizeSlots validates, de-duplicates and sorts an owner-supplied list.
// It returns the offending entry when one is not HH:MM.
func NormalizeSlots(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !validator.IsTimeSlot(s) {
			return nil, fmt.Errorf("invalid time slot %q", s)
		}
		out = append(out, s)
	}
	// Zero-padded HH:MM sorts lexically in time order.
	slices.Sort(out)
	return slices.Compact(out), nil
}

// AnnotateSlots marks each slot reserved when a blocking reservation shares
// its time string. The slot order is kept and nothing is removed.
func AnnotateSlots(slots []string, reservations []Reservation, cancelledBlocks bool) []Slot {
	taken := make(map[string]struct{}, len(reservations))
	for i := range reservations {
		if reservations[i].BlocksSlot(cancelledBlocks) {
			taken[reservations[i].TimeSlot] = struct{}{}
		}
	}

	out := make([]Slot, len(slots))
	for i, s := range slots {
		_, reserved := taken[s]
		out[i] = Slot{Time: s, Reserved: reserved}
	}
	return out
}
