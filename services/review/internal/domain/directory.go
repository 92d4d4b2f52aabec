package domain

// BookedVisit is a reservation as announced by the booking service. A review
// that names a reservation must come from its customer and be about its shop.
type BookedVisit struct {
	ReservationID string
	ShopID        string
	CustomerID    string
}

// Matches reports whether a review by authorID of shopID may cite v.
func (v *BookedVisit) Matches(authorID, shopID string) bool {
	return authorID != "" && v.CustomerID == authorID && v.ShopID == shopID
}
