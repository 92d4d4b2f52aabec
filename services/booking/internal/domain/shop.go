package domain

import "time"

// Shop is the booking side of a grooming salon. AverageRating and
// ReviewCount mirror the review service aggregate.
type Shop struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	TimeSlots     []string  `json:"time_slots"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s *Shop) OwnedBy(userID string) bool {
	return userID != "" && s.OwnerID == userID
}
