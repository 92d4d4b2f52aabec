package domain

import (
	"math"
	"time"
)

// ShopRating is the aggregate of a shop's reviews.
type ShopRating struct {
	ShopID        string    `json:"shop_id"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
}

// RoundRating rounds to one decimal place, halves away from zero.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// Summarize returns the mean of ratings rounded to one decimal, and how many
// there were. An empty set averages 0.
func Summarize(ratings []float64) (average float64, count int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return RoundRating(sum / float64(len(ratings))), len(ratings)
}
