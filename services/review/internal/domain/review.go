package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// BlindedContent replaces the text of a review hidden by moderation.
const BlindedContent = "This review has been hidden by a moderator."

// Reply is the shop owner's answer to a review.
type Reply struct {
	Content   string    `json:"content"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is a customer's rating of one shop.
type Review struct {
	ID            string    `json:"id"`
	ShopID        string    `json:"shop_id"`
	ReservationID string    `json:"reservation_id,omitempty"`
	OwnerID       string    `json:"owner_id,omitempty"`
	AuthorID      string    `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	Content       string    `json:"content"`
	Rating        int       `json:"rating"`
	Photos        []string  `json:"photos,omitempty"`
	Reply         *Reply    `json:"reply,omitempty"`
	Blinded       bool      `json:"blinded"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ValidRating(n int) bool {
	return n >= MinRating && n <= MaxRating
}

func (r *Review) WrittenBy(userID string) bool {
	return userID != "" && r.AuthorID == userID
}

// Masked returns the public view of r. Blinded reviews keep their rating but
// lose their text and photos.
func (r Review) Masked() Review {
	if !r.Blinded {
		return r
	}
	r.Content = BlindedContent
	r.Photos = nil
	return r
}
