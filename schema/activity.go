package schema

import "time"

// intent kinds recorded in the activity log
const (
	ActPurchase    = "purchase_tokens"
	ActRedeem      = "redeem_tokens"
	ActCreateOrder = "create_sell_order"
	ActCancelOrder = "cancel_sell_order"
	ActBuyOrder    = "buy_from_sell_order"
	ActRent        = "rent_property"
	ActPayRent     = "pay_rent"
	ActApply       = "apply_for_rent"
	ActVote        = "vote_for_rent"
	ActFinalize    = "finalize_application"
	ActLink        = "link_ledgers"
)

// Activity is one submitted intent and its outcome. The ledger owns all
// durable domain state; this table is an append-only audit trail and never
// feeds business decisions.
type Activity struct {
	ID         string `gorm:"primarykey;size:36"` // uuid
	Account    string `gorm:"index;size:42"`
	Kind       string `gorm:"index;size:32"`
	PropertyId uint64
	RefId      uint64 // order/rental/application id when known
	Amount     uint64
	Value      string `gorm:"size:80"` // native units, decimal string
	Success    bool
	Message    string `gorm:"size:512"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Activity) TableName() string {
	return "activities"
}
