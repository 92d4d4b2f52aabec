package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		ratings   []float64
		wantAvg   float64
		wantCount int
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{5}, 5, 1},
		{"three reviews", []float64{5, 4, 3}, 4.0, 3},
		{"after adding a 2", []float64{5, 4, 3, 2}, 3.5, 4},
		{"after deleting the 5", []float64{4, 3, 2}, 3.0, 3},
		{"rounds down", []float64{5, 4, 4}, 4.3, 3},
		{"rounds up", []float64{5, 5, 4}, 4.7, 3},
		{"fractional ratings", []float64{4.5, 3.5}, 4.0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, count := Summarize(tt.ratings)
			assert.InDelta(t, tt.wantAvg, avg, 1e-9)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestRoundRating(t *testing.T) {
	assert.InDelta(t, 3.3, RoundRating(10.0/3.0), 1e-9)
	assert.InDelta(t, 3.7, RoundRating(11.0/3.0), 1e-9)
	assert.InDelta(t, 0.0, RoundRating(0), 1e-9)
}

func TestValidRating(t *testing.T) {
	assert.False(t, ValidRating(0))
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(6))
}

func TestReview_Masked(t *testing.T) {
	r := Review{Content: "great cut", Photos: []string{"https://img/1.jpg"}, Rating: 5}
	assert.Equal(t, r, r.Masked())

	r.Blinded = true
	masked := r.Masked()
	assert.Equal(t, BlindedContent, masked.Content)
	assert.Nil(t, masked.Photos)
	assert.Equal(t, 5, masked.Rating)
	assert.Equal(t, "great cut", r.Content, "original must not change")
}

func TestReview_WrittenBy(t *testing.T) {
	r := Review{AuthorID: "u1"}
	assert.True(t, r.WrittenBy("u1"))
	assert.False(t, r.WrittenBy("u2"))
	assert.False(t, (&Review{}).WrittenBy(""))
}
