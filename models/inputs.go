package models

// SettlerSelection is the atomic payload committed when the customer accepts
// one bid: the settler identity plus a freshly generated service start code.
type SettlerSelection struct {
	SettlerID        string `json:"settlerId"`
	SettlerServiceID string `json:"settlerServiceId"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	ServiceStartCode string `json:"serviceStartCode"`
}

// QuoteProposal is a settler-proposed price revision. Absent fields keep
// their committed counterparts on acceptance.
type QuoteProposal struct {
	Description string       `json:"description,omitempty"`
	Price       *float64     `json:"price,omitempty"`
	Addons      []AddonGroup `json:"addons,omitempty"`
	Total       *float64     `json:"total,omitempty"`
}

// AcceptorDetails pairs one acceptor with the read-only profile and service
// statistics joined for the customer's decision support.
type AcceptorDetails struct {
	Index         int             `json:"index"`
	Acceptor      Acceptor        `json:"acceptor"`
	Profile       *User           `json:"profile,omitempty"`
	Service       *SettlerService `json:"service,omitempty"`
	RatingAverage float64         `json:"ratingAverage"`
	JobsCount     int             `json:"jobsCount"`
	TotalBids     int             `json:"totalBids"`
}
