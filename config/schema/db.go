package schema

import "time"

// LinkState records whether the governance ledger has been linked to the
// ownership ledger and to which address. The ledger's own
// useRealEstateContract flag stays authoritative; this row only survives
// restarts so the admin UI can show the last link action.
type LinkState struct {
	ID            uint `gorm:"primarykey"`
	EstateAddress string
	Linked        bool
	UpdatedAt     time.Time
}
