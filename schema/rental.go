package schema

import "time"

// RentPeriod is the rent cadence. Fixed 30-day windows, not calendar
// months; due-ness is recomputed client-side from the ledger timestamp.
const RentPeriod = 30 * 24 * time.Hour

// DefaultLeaseTerm is the lease length the ledger applies to new rentals.
const DefaultLeaseTerm = 365 * 24 * time.Hour

type RentalAgreement struct {
	RentalId        uint64 `json:"rentalId"`
	PropertyId      uint64 `json:"propertyId"`
	Tenant          string `json:"tenant"`
	StartDate       int64  `json:"startDate"` // unix seconds
	EndDate         int64  `json:"endDate"`
	LastRentPayment int64  `json:"lastRentPayment"`
	IsActive        bool   `json:"isActive"`
}

type RentalDetail struct {
	RentalAgreement
	Property Property `json:"property"`
	RentDue  bool     `json:"rentDue"`
}
