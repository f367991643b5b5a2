package schema

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the number of decimals of the ledger's native value
// unit. All prices and rents are carried in native units; only display
// values are converted.
const NativeDecimals = 18

type Property struct {
	PropertyId          uint64   `json:"propertyId"`
	Name                string   `json:"name"`
	Location            string   `json:"location"`
	Description         string   `json:"description"`
	ImageURI            string   `json:"imageURI"`
	TotalCost           *big.Int `json:"totalCost"`
	TotalNumberOfTokens uint64   `json:"totalNumberOfTokens"`
	PricePerToken       *big.Int `json:"pricePerToken"`
	IsActive            bool     `json:"isActive"`
	IsRentable          bool     `json:"isRentable"`
	MonthlyRent         *big.Int `json:"monthlyRent"`
}

// IsHole reports whether the ledger entry at this index is a sparse or
// soft-deleted slot. The ledger never reuses indexes, so an empty name is
// the only marker.
func (p Property) IsHole() bool {
	return p.Name == ""
}

type OwnershipEntry struct {
	Property
	TokensHeld      uint64          `json:"tokensHeld"`
	RawValue        *big.Int        `json:"rawValue"`        // native units
	InvestmentValue decimal.Decimal `json:"investmentValue"` // display units
}

type PortfolioSummary struct {
	Properties  int             `json:"properties"`
	TotalTokens uint64          `json:"totalTokens"`
	TotalValue  decimal.Decimal `json:"totalValue"`
}

// ToDisplay converts a native-unit amount into the decimal display unit.
func ToDisplay(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -NativeDecimals)
}
