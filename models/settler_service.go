package models

import "time"

// SettlerService is a settler's public service profile. Its statistics are
// joined read-only onto acceptor candidates for decision support, and its
// jobs count is incremented exactly once per completed booking.
type SettlerService struct {
	ID          string `bson:"id" json:"id"`
	SettlerID   string `bson:"settler_id" json:"settlerId"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// Running rating aggregates; the average is derived, never stored.
	RatingsSum   int `bson:"ratings_sum" json:"-"`
	RatingsCount int `bson:"ratings_count" json:"ratingsCount"`

	JobsCount int `bson:"jobs_count" json:"jobsCount"`

	// Bookings already credited to JobsCount, so a retried completion never
	// double-counts.
	CreditedBookings []string `bson:"credited_bookings,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// RatingAverage returns the mean rating, or 0 when unrated.
func (s *SettlerService) RatingAverage() float64 {
	if s.RatingsCount == 0 {
		return 0
	}
	return float64(s.RatingsSum) / float64(s.RatingsCount)
}
