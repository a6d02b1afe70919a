package domain

import "time"

// Settings is the single back-office configuration document.
type Settings struct {
	CompanyName        string    `json:"company_name"`
	CompanyEmail       string    `json:"company_email,omitempty"`
	Currency           string    `json:"currency"`
	NotifyOnOrder      bool      `json:"notify_on_order"`
	NotifyOnAcceptance bool      `json:"notify_on_acceptance"`
	UpdatedAt          time.Time `json:"updated_at"`
}
