package models

import "time"

// User is a platform user. Both roles share the same record; full account
// management lives outside this service, we only read what the booking
// lifecycle needs (names, push token).
type User struct {
	ID              string    `bson:"id" json:"id"`
	FirstName       string    `bson:"first_name" json:"firstName"`
	LastName        string    `bson:"last_name" json:"lastName"`
	Email           string    `bson:"email" json:"email"`
	Role            string    `bson:"role" json:"role"` // "customer" or "settler"
	ProfileImageURL string    `bson:"profile_image_url,omitempty" json:"profileImageUrl,omitempty"`
	FCMToken        string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
}
