package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Reservation status constants.
const (
	StatusRequested = "requested"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// transitions lists the statuses each status may move to. Completed and
// cancelled are terminal.
var transitions = map[string][]string{
	StatusRequested: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: nil,
	StatusCancelled: nil,
}

// Item is one grooming service on a reservation. Price is in won.
type Item struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type Reservation struct {
	ID            string    `json:"id"`
	ShopID        string    `json:"shop_id"`
	CustomerID    string    `json:"customer_id"`
	OwnerID       string    `json:"owner_id"`
	Date          string    `json:"date"`
	TimeSlot      string    `json:"time"`
	Items         []Item    `json:"items"`
	TotalPrice    int64     `json:"total_price"`
	Status        string    `json:"status"`
	Request       string    `json:"request,omitempty"`
	ReviewWritten bool      `json:"review_written"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ErrPriceOutOfRange is returned for a negative price or a sum that does not
// fit in int64.
var ErrPriceOutOfRange = errors.New("item prices out of range")

// TotalPrice sums the item prices.
func TotalPrice(items []Item) (int64, error) {
	var total int64
	for _, it := range items {
		if it.Price < 0 || total > math.MaxInt64-it.Price {
			return 0, ErrPriceOutOfRange
		}
		total += it.Price
	}
	return total, nil
}

// BlocksSlot reports whether r occupies its time slot. Cancelled
// reservations block only when cancelledBlocks is set.
func (r *Reservation) BlocksSlot(cancelledBlocks bool) bool {
	return r.Status != StatusCancelled || cancelledBlocks
}

func IsValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

// ParseStatus rejects statuses this service does not know, so rows written
// by something else fail closed instead of leaking through.
func ParseStatus(status string) (string, error) {
	if !IsValidStatus(status) {
		return "", fmt.Errorf("unknown reservation status %q", status)
	}
	return status, nil
}

// CanTransition reports whether a reservation in status from may move to to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	return IsValidStatus(status) && len(transitions[status]) == 0
}
