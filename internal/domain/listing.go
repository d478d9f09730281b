package domain

import "time"

type InsuranceStatus string

const (
	InsuranceStatusPending  InsuranceStatus = "PENDING"
	InsuranceStatusApproved InsuranceStatus = "APPROVED"
	InsuranceStatusRejected InsuranceStatus = "REJECTED"
)

type Listing struct {
	ID              int64           `json:"id"`
	Owner           Principal       `json:"owner"`
	DailyPrice      Amount          `json:"daily_price"`
	SecurityDeposit Amount          `json:"security_deposit"`
	Active          bool            `json:"active"`
	InsuranceStatus InsuranceStatus `json:"insurance_status"`
	InsuranceDocURI string          `json:"insurance_doc_uri"`
	Make            string          `json:"make"`
	Model           string          `json:"model"`
	Year            int32           `json:"year"`
	Location        string          `json:"location"`
	CreatedOn       time.Time       `json:"created_on"`
	UpdatedOn       time.Time       `json:"updated_on"`
}

// ListingInput carries the owner-editable fields of a listing.
type ListingInput struct {
	DailyPrice      Amount `json:"daily_price"`
	SecurityDeposit Amount `json:"security_deposit"`
	InsuranceDocURI string `json:"insurance_doc_uri"`
	Make            string `json:"make"`
	Model           string `json:"model"`
	Year            int32  `json:"year"`
	Location        string `json:"location"`
}

// Validate enforces the pricing invariant shared by create and edit.
func (in ListingInput) Validate() error {
	if in.DailyPrice.Sign() <= 0 || in.SecurityDeposit.Sign() < 0 {
		return ErrBadPrice
	}
	return nil
}

// Apply overwrites the mutable fields of l with in.
func (l *Listing) Apply(in ListingInput) {
	l.DailyPrice = in.DailyPrice
	l.SecurityDeposit = in.SecurityDeposit
	l.InsuranceDocURI = in.InsuranceDocURI
	l.Make = in.Make
	l.Model = in.Model
	l.Year = in.Year
	l.Location = in.Location
}

func (l *Listing) Bookable() error {
	if !l.Active {
		return ErrListingInactive
	}
	if l.InsuranceStatus != InsuranceStatusApproved {
		return ErrInsuranceNotValid
	}
	return nil
}
