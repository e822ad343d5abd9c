package models

import "time"

// Notification is a push sent to one user about a booking lifecycle event.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"createdAt"`
}

// CooldownReminderPayload is the asynq task payload scheduled when a booking
// enters cooldown, prompting the customer to release payment.
type CooldownReminderPayload struct {
	BookingID  string `json:"bookingId"`
	CustomerID string `json:"customerId"`
}
