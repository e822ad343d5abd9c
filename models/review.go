package models

import "time"

// Review is the customer's rating of a completed booking.
type Review struct {
	ID               string    `bson:"id" json:"id"`
	BookingID        string    `bson:"booking_id" json:"bookingId"`
	SettlerServiceID string    `bson:"settler_service_id" json:"settlerServiceId"`
	CustomerID       string    `bson:"customer_id" json:"customerId"`
	Rating           int       `bson:"rating" json:"rating"` // 1..5
	Comment          string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"createdAt"`
}
