package model

import "time"

const DefaultGroup = "general"

// Contact is keyed by its canonical phone.
type Contact struct {
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	CountryCode string    `json:"country_code"`
	Group       string    `json:"group"`
	AddedAt     time.Time `json:"added_at"`
}
