package domain

import (
	"fmt"
	"strconv"
)

// Notice kinds, one per triggering event.
const (
	KindReservationCreated = "reservation_created"
	KindReservationStatus  = "reservation_status"
	KindReservationRemind  = "reservation_reminder"
	KindReviewCreated      = "review_created"
)

// Reservation statuses as published by the booking service.
const (
	StatusRequested = "requested"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Notice is a rendered notification addressed to a user, before the user's
// device token is known.
type Notice struct {
	Kind        string
	RecipientID string
	Title       string
	Body        string
	Data        map[string]string
}

// Message is the push gateway payload.
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound,omitempty"`
}

// Message addresses the notice to a device token.
func (n Notice) Message(token string) *Message {
	return &Message{
		To:    token,
		Title: n.Title,
		Body:  n.Body,
		Data:  n.Data,
		Sound: "default",
	}
}

// Slot identifies a reservation as the booking service describes it.
type Slot struct {
	ReservationID string
	ShopID        string
	ShopName      string
	Date          string
	Time          string
}

func (s Slot) when() string {
	if s.Time == "" {
		return s.Date
	}
	return s.Date + " " + s.Time
}

func (s Slot) shop() string {
	if s.ShopName == "" {
		return "the salon"
	}
	return s.ShopName
}

func (s Slot) data(kind string) map[string]string {
	return map[string]string{
		"type":           kind,
		"reservation_id": s.ReservationID,
		"shop_id":        s.ShopID,
	}
}

// NewReservationNotice tells a shop owner about a new booking request.
func NewReservationNotice(ownerID string, s Slot) Notice {
	return Notice{
		Kind:        KindReservationCreated,
		RecipientID: ownerID,
		Title:       "New reservation",
		Body:        fmt.Sprintf("A reservation was requested at %s for %s.", s.shop(), s.when()),
		Data:        s.data(KindReservationCreated),
	}
}

// StatusNotice renders the message for a reservation that moved to status.
// The customer is told, unless the customer cancelled the reservation
// themselves, in which case the shop owner is. It reports false for
// statuses nobody is notified about.
func StatusNotice(customerID, ownerID, changedBy, status string, s Slot) (Notice, bool) {
	n := Notice{
		Kind:        KindReservationStatus,
		RecipientID: customerID,
		Data:        s.data(KindReservationStatus),
	}
	n.Data["status"] = status

	switch status {
	case StatusConfirmed:
		n.Title = "Reservation confirmed"
		n.Body = fmt.Sprintf("Your reservation at %s for %s is confirmed.", s.shop(), s.when())
	case StatusCompleted:
		n.Title = "Grooming complete"
		n.Body = fmt.Sprintf("Thanks for visiting %s. How was it? Leave a review!", s.shop())
	case StatusCancelled:
		if changedBy != "" && changedBy == customerID {
			n.RecipientID = ownerID
			n.Title = "Reservation cancelled"
			n.Body = fmt.Sprintf("The customer cancelled the reservation for %s.", s.when())
			break
		}
		n.Title = "Reservation cancelled"
		n.Body = fmt.Sprintf("Your reservation at %s for %s was cancelled.", s.shop(), s.when())
	default:
		return Notice{}, false
	}
	return n, true
}

// ReminderNotice reminds a customer of tomorrow's appointment.
func ReminderNotice(customerID string, s Slot) Notice {
	return Notice{
		Kind:        KindReservationRemind,
		RecipientID: customerID,
		Title:       "Appointment tomorrow",
		Body:        fmt.Sprintf("Reminder: you are booked at %s for %s.", s.shop(), s.when()),
		Data:        s.data(KindReservationRemind),
	}
}

// ReviewNotice tells a shop owner a review was written.
func ReviewNotice(ownerID, shopID, reviewID, authorName string, rating int) Notice {
	if authorName == "" {
		authorName = "A customer"
	}
	return Notice{
		Kind:        KindReviewCreated,
		RecipientID: ownerID,
		Title:       "New review",
		Body:        fmt.Sprintf("%s left a %d-star review.", authorName, rating),
		Data: map[string]string{
			"type":      KindReviewCreated,
			"shop_id":   shopID,
			"review_id": reviewID,
			"rating":    strconv.Itoa(rating),
		},
	}
}
