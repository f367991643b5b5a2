package schema

import "math/big"

type SellOrder struct {
	OrderId       uint64   `json:"orderId"`
	PropertyId    uint64   `json:"propertyId"`
	Seller        string   `json:"seller"`
	TokenAmount   uint64   `json:"tokenAmount"`
	PricePerToken *big.Int `json:"pricePerToken"`
	IsActive      bool     `json:"isActive"`
}

// TotalCost is the exact native-unit cost a buyer must attach to fulfill
// the order. Integer math only; financial comparisons never go through
// floats.
func (o SellOrder) TotalCost() *big.Int {
	return new(big.Int).Mul(o.PricePerToken, new(big.Int).SetUint64(o.TokenAmount))
}

type OrderDetail struct {
	SellOrder
	Property Property `json:"property"`
}
