package models

import "time"

// RateQuote is one mortgage product scraped from a lender's listing page.
type RateQuote struct {
	Lender     string    `json:"lender"`
	Product    string    `json:"product"` // e.g. "fixed-20y"
	AnnualRate float64   `json:"annualRate"`
	TermYears  int       `json:"termYears"`
	FetchedAt  time.Time `json:"fetchedAt"`
}
