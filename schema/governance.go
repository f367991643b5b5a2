package schema

import "math/big"

// VoteProperty is the governance ledger's view of a property. When the
// governance ledger is linked to the ownership ledger, MappedRealEstateId
// points at the ownership-side index whose balances carry voting power.
type VoteProperty struct {
	PropertyId         uint64   `json:"propertyId"`
	Name               string   `json:"name"`
	Location           string   `json:"location"`
	TotalTokens        uint64   `json:"totalTokens"`
	IsActive           bool     `json:"isActive"`
	IsRentable         bool     `json:"isRentable"`
	MonthlyRent        *big.Int `json:"monthlyRent"`
	MappedRealEstateId uint64   `json:"mappedRealEstateId"`
}

type RentApplication struct {
	ApplicationId uint64 `json:"applicationId"`
	PropertyId    uint64 `json:"propertyId"`
	Applicant     string `json:"applicant"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	VotingEndTime int64  `json:"votingEndTime"` // unix seconds
	IsActive      bool   `json:"isActive"`
	IsApproved    bool   `json:"isApproved"`
	SelectedRenter string `json:"selectedRenter"`
}
