// Package ledger is the narrow facade over the authoritative ledgers. The
// application never owns durable state; everything here reflects or
// mutates what the ledger reports.
package ledger

import (
	"math/big"

	"github.com/brickfolio/brickfolio/schema"
)

// Estate is the call surface of the ownership ledger: property enumeration,
// balances, the resale order book and the rental book. Write calls take the
// signer explicitly; implementations reject signers they cannot sign for.
type Estate interface {
	PropertiesCount() (uint64, error)
	PropertyDetails(idx uint64) (schema.Property, error)
	TokenBalance(idx uint64, holder string) (uint64, error)
	PropertyRentalInfo(idx uint64) (rentable bool, monthlyRent *big.Int, err error)
	AllSellOrders() ([]schema.SellOrder, error)
	SellOrdersBySeller(seller string) ([]schema.SellOrder, error)
	TenantRentals(tenant string) ([]schema.RentalAgreement, error)

	PurchaseTokens(signer string, idx, amount uint64, value *big.Int) error
	RedeemTokens(signer string, idx, amount uint64) error
	CreateSellOrder(signer string, idx, amount uint64, pricePerToken *big.Int) error
	CancelSellOrder(signer string, orderId uint64) error
	BuyFromSellOrder(signer string, orderId uint64, value *big.Int) error
	RentProperty(signer string, idx uint64, value *big.Int) error
	PayRent(signer string, rentalId uint64, value *big.Int) error
}

// Governance is the call surface of the voting ledger. It may run decoupled
// from the ownership ledger; Linked reports whether the admin link has been
// established, after which TokensOwned is the authoritative balance lookup.
type Governance interface {
	Properties() ([]schema.VoteProperty, error)
	PropertyApplications(propertyId uint64) ([]schema.RentApplication, error)
	CandidateVotes(applicationId uint64, candidate string) (uint64, error)
	HasVoted(applicationId uint64, holder string) (bool, error)
	TokenOwnership(propertyId uint64, holder string) (uint64, error)
	TokensOwned(propertyId uint64, holder string) (uint64, error)
	Linked() (bool, error)

	ApplyForRent(signer string, propertyId uint64, name, description string) error
	VoteForRent(signer string, applicationId uint64, candidate string) error
	FinalizeApplication(signer string, applicationId uint64) error
	LinkEstate(signer string, estateAddr string) error
}
