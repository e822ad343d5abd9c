package models

import "time"

// AddonOption is a single priced line item inside an addon group. Options
// default to completed at intake; they are only toggled off during a
// partial-completion dispute.
type AddonOption struct {
	Label           string  `bson:"label" json:"label"`
	AdditionalPrice float64 `bson:"additional_price" json:"additionalPrice"`
	IsCompleted     bool    `bson:"is_completed" json:"isCompleted"`
}

// AddonGroup groups related addon options under one heading.
type AddonGroup struct {
	Title   string        `bson:"title" json:"title"`
	Options []AddonOption `bson:"options" json:"options"`
}

// CatalogueSnapshot is the purchased service definition captured at booking
// time. Historical bookings stay stable even if the catalogue entry later
// changes.
type CatalogueSnapshot struct {
	ServiceID string   `bson:"service_id" json:"serviceId"`
	Title     string   `bson:"title" json:"title"`
	BasePrice float64  `bson:"base_price" json:"basePrice"`
	ImageURLs []string `bson:"image_urls,omitempty" json:"imageUrls,omitempty"`
}

// Acceptor is a settler's bid on a broadcast booking. The list only grows
// until one acceptor is selected; it is never retracted.
type Acceptor struct {
	SettlerID        string `bson:"settler_id" json:"settlerId"`
	SettlerServiceID string `bson:"settler_service_id" json:"settlerServiceId"`
	FirstName        string `bson:"first_name" json:"firstName"`
	LastName         string `bson:"last_name" json:"lastName"`
}

// Booking is the central record. All lifecycle transitions are expressed as
// partial updates to this document, conditioned on the expected status.
type Booking struct {
	ID         string            `bson:"id" json:"id"`
	CustomerID string            `bson:"customer_id" json:"customerId"`
	Status     BookingStatus     `bson:"status" json:"status"`
	Catalogue  CatalogueSnapshot `bson:"catalogue" json:"catalogue"`
	Acceptors  []Acceptor        `bson:"acceptors,omitempty" json:"acceptors,omitempty"`

	// The single selected settler; populated exactly once, atomically with
	// status advancing past broadcasting.
	SettlerID        string `bson:"settler_id,omitempty" json:"settlerId,omitempty"`
	SettlerServiceID string `bson:"settler_service_id,omitempty" json:"settlerServiceId,omitempty"`
	SettlerFirstName string `bson:"settler_first_name,omitempty" json:"settlerFirstName,omitempty"`
	SettlerLastName  string `bson:"settler_last_name,omitempty" json:"settlerLastName,omitempty"`

	// 7-digit shared secret both parties confirm before active service.
	// Present if and only if status >= StatusSettlerSelected.
	ServiceStartCode string `bson:"service_start_code,omitempty" json:"serviceStartCode,omitempty"`

	Addons []AddonGroup `bson:"addons,omitempty" json:"addons,omitempty"`

	// Committed manual quote line proposed by the settler out of band.
	ManualQuoteDescription string   `bson:"manual_quote_description,omitempty" json:"manualQuoteDescription,omitempty"`
	ManualQuotePrice       *float64 `bson:"manual_quote_price,omitempty" json:"manualQuotePrice,omitempty"`
	IsManualQuoteCompleted bool     `bson:"is_manual_quote_completed,omitempty" json:"isManualQuoteCompleted,omitempty"`

	// Proposed quote revision awaiting the customer's accept/reject. While a
	// revision is pending the committed Total stays authoritative.
	NewManualQuoteDescription string       `bson:"new_manual_quote_description,omitempty" json:"newManualQuoteDescription,omitempty"`
	NewManualQuotePrice       *float64     `bson:"new_manual_quote_price,omitempty" json:"newManualQuotePrice,omitempty"`
	NewAddons                 []AddonGroup `bson:"new_addons,omitempty" json:"newAddons,omitempty"`
	NewTotal                  *float64     `bson:"new_total,omitempty" json:"newTotal,omitempty"`

	// Committed, customer-facing total.
	Total float64 `bson:"total" json:"total"`

	// Problem report evidence, write-once per dispute cycle.
	ProblemReportRemark    string   `bson:"problem_report_remark,omitempty" json:"problemReportRemark,omitempty"`
	ProblemReportImageURLs []string `bson:"problem_report_image_urls,omitempty" json:"problemReportImageUrls,omitempty"`

	// Advisory banner flags; not consulted by the transition table.
	IsDoingVisitAndFix    bool `bson:"is_doing_visit_and_fix,omitempty" json:"isDoingVisitAndFix,omitempty"`
	IsDoingUpdateEvidence bool `bson:"is_doing_update_evidence,omitempty" json:"isDoingUpdateEvidence,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasSettler reports whether a settler has been committed to this booking.
func (b *Booking) HasSettler() bool {
	return b.SettlerID != ""
}

// HasPendingQuote reports whether a quote revision is awaiting resolution.
func (b *Booking) HasPendingQuote() bool {
	return b.NewTotal != nil || b.NewManualQuotePrice != nil || len(b.NewAddons) > 0 || b.NewManualQuoteDescription != ""
}

// HasProblemReport reports whether evidence has been filed for the current
// dispute cycle. Once filed the report is read-only until withdrawn.
func (b *Booking) HasProblemReport() bool {
	return b.ProblemReportRemark != ""
}

// ChatChannelID returns the chat channel shared by customer and settler.
// The channel only becomes reachable once a settler has been selected.
func (b *Booking) ChatChannelID() string {
	if !b.HasSettler() {
		return ""
	}
	return "chat:" + b.ID
}
