package ledger

import (
	"math/big"
	"testing"
	"time"

	"github.com/brickfolio/brickfolio/schema"
	"github.com/stretchr/testify/assert"
)

const (
	alice = "0xaaa1"
	bob   = "0xbbb2"
	carol = "0xccc3"
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func seedLedger() *MemLedger {
	m := NewMemLedger()
	m.AddProperty(schema.Property{
		Name:                "Harborview Flats",
		Location:            "Rotterdam, NL",
		TotalCost:           eth(5000),
		TotalNumberOfTokens: 1000,
		PricePerToken:       eth(5),
		IsActive:            true,
	})
	m.AddProperty(schema.Property{
		Name:                "Cedar Row House",
		Location:            "Leipzig, DE",
		TotalCost:           eth(2400),
		TotalNumberOfTokens: 800,
		PricePerToken:       eth(3),
		IsActive:            true,
		IsRentable:          true,
		MonthlyRent:         eth(1),
	})
	return m
}

func TestPurchaseExactPayment(t *testing.T) {
	m := seedLedger()

	err := m.PurchaseTokens(alice, 0, 10, eth(49))
	assert.ErrorIs(t, err, schema.ErrPaymentMismatch)

	err = m.PurchaseTokens(alice, 0, 10, eth(50))
	assert.NoError(t, err)

	bal, err := m.TokenBalance(0, alice)
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), bal)
}

func TestPurchaseSupplyBound(t *testing.T) {
	m := seedLedger()

	err := m.PurchaseTokens(alice, 0, 900, eth(4500))
	assert.NoError(t, err)
	err = m.PurchaseTokens(bob, 0, 101, eth(505))
	assert.ErrorIs(t, err, schema.ErrInsufficientBalance)

	// balances never exceed total supply
	err = m.PurchaseTokens(bob, 0, 100, eth(500))
	assert.NoError(t, err)
	a, _ := m.TokenBalance(0, alice)
	b, _ := m.TokenBalance(0, bob)
	assert.LessOrEqual(t, a+b, uint64(1000))
}

func TestCreateOrderUnlistedBalance(t *testing.T) {
	m := seedLedger()
	assert.NoError(t, m.PurchaseTokens(alice, 0, 10, eth(50)))

	assert.NoError(t, m.CreateSellOrder(alice, 0, 6, eth(6)))
	// 4 unlisted tokens left; listing 5 more must fail
	err := m.CreateSellOrder(alice, 0, 5, eth(6))
	assert.ErrorIs(t, err, schema.ErrInsufficientBalance)

	err = m.CreateSellOrder(alice, 0, 2, big.NewInt(0))
	assert.ErrorIs(t, err, schema.ErrInvalidPrice)
}

func TestBuyFromSellOrder(t *testing.T) {
	m := seedLedger()
	assert.NoError(t, m.PurchaseTokens(alice, 0, 10, eth(50)))
	assert.NoError(t, m.CreateSellOrder(alice, 0, 4, eth(6)))

	err := m.BuyFromSellOrder(bob, 0, eth(23))
	assert.ErrorIs(t, err, schema.ErrPaymentMismatch)

	assert.NoError(t, m.BuyFromSellOrder(bob, 0, eth(24)))

	a, _ := m.TokenBalance(0, alice)
	b, _ := m.TokenBalance(0, bob)
	assert.Equal(t, uint64(6), a)
	assert.Equal(t, uint64(4), b)

	// order is spent; a second fill is the normal race outcome
	err = m.BuyFromSellOrder(carol, 0, eth(24))
	assert.ErrorIs(t, err, schema.ErrOrderInactive)
	assert.True(t, schema.Retryable(err))
}

func TestCancelSellOrder(t *testing.T) {
	m := seedLedger()
	assert.NoError(t, m.PurchaseTokens(alice, 0, 10, eth(50)))
	assert.NoError(t, m.CreateSellOrder(alice, 0, 4, eth(6)))

	err := m.CancelSellOrder(bob, 0)
	assert.ErrorIs(t, err, schema.ErrNotOwner)

	assert.NoError(t, m.CancelSellOrder(alice, 0))
	err = m.CancelSellOrder(alice, 0)
	assert.ErrorIs(t, err, schema.ErrAlreadyInactive)
}

func TestRentPropertyFlags(t *testing.T) {
	m := seedLedger()

	err := m.RentProperty(bob, 0, eth(1))
	assert.ErrorIs(t, err, schema.ErrNotRentable)

	err = m.RentProperty(bob, 1, eth(2))
	assert.ErrorIs(t, err, schema.ErrPaymentMismatch)

	assert.NoError(t, m.RentProperty(bob, 1, eth(1)))

	// occupancy rides on the active flag
	p, _ := m.PropertyDetails(1)
	assert.False(t, p.IsActive)

	err = m.RentProperty(carol, 1, eth(1))
	assert.ErrorIs(t, err, schema.ErrAlreadyRented)
}

func TestPayRentUpdatesTimestamp(t *testing.T) {
	m := seedLedger()
	base := time.Unix(1700000000, 0)
	m.SetNow(func() time.Time { return base })
	assert.NoError(t, m.RentProperty(bob, 1, eth(1)))

	err := m.PayRent(carol, 0, eth(1))
	assert.ErrorIs(t, err, schema.ErrRentalNotFound)

	err = m.PayRent(bob, 0, eth(2))
	assert.ErrorIs(t, err, schema.ErrUnderpayment)

	later := base.Add(31 * 24 * time.Hour)
	m.SetNow(func() time.Time { return later })
	assert.NoError(t, m.PayRent(bob, 0, eth(1)))

	rentals, err := m.TenantRentals(bob)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(rentals))
	assert.Equal(t, later.Unix(), rentals[0].LastRentPayment)
}

func TestVoteOncePerApplication(t *testing.T) {
	m := seedLedger()
	m.AddVoteProperty(schema.VoteProperty{
		Name:        "Cedar Row House",
		TotalTokens: 800,
		IsActive:    true,
		IsRentable:  true,
		MonthlyRent: eth(1),
	})
	m.SetVoteBalance(0, alice, 300)

	assert.NoError(t, m.ApplyForRent(carol, 0, "Carol", "quiet tenant"))

	assert.NoError(t, m.VoteForRent(alice, 0, carol))
	err := m.VoteForRent(alice, 0, carol)
	assert.ErrorIs(t, err, schema.ErrAlreadyVoted)

	err = m.VoteForRent(bob, 0, carol)
	assert.ErrorIs(t, err, schema.ErrNoVotingPower)

	votes, err := m.CandidateVotes(0, carol)
	assert.NoError(t, err)
	assert.Equal(t, uint64(300), votes)
}

func TestFinalizeWindow(t *testing.T) {
	m := seedLedger()
	m.SetVotingPeriod(7 * 24 * time.Hour)
	base := time.Unix(1700000000, 0)
	m.SetNow(func() time.Time { return base })
	m.AddVoteProperty(schema.VoteProperty{
		Name:        "Cedar Row House",
		TotalTokens: 800,
		IsActive:    true,
	})
	m.SetVoteBalance(0, alice, 500)
	assert.NoError(t, m.ApplyForRent(carol, 0, "Carol", "quiet tenant"))
	assert.NoError(t, m.VoteForRent(alice, 0, carol))

	err := m.FinalizeApplication(alice, 0)
	assert.ErrorIs(t, err, schema.ErrVotingStillOpen)

	m.SetNow(func() time.Time { return base.Add(8 * 24 * time.Hour) })
	assert.NoError(t, m.FinalizeApplication(alice, 0))

	apps, _ := m.PropertyApplications(0)
	assert.False(t, apps[0].IsActive)
	assert.True(t, apps[0].IsApproved)
	assert.Equal(t, carol, apps[0].SelectedRenter)

	// closing is terminal, not idempotent
	err = m.FinalizeApplication(alice, 0)
	assert.ErrorIs(t, err, schema.ErrAlreadyInactive)
}

func TestLinkedVotingPower(t *testing.T) {
	m := seedLedger()
	m.AddVoteProperty(schema.VoteProperty{
		Name:               "Cedar Row House",
		TotalTokens:        800,
		IsActive:           true,
		MappedRealEstateId: 1,
	})
	assert.NoError(t, m.PurchaseTokens(alice, 1, 10, eth(30)))

	_, err := m.TokensOwned(0, alice)
	assert.Error(t, err)

	assert.NoError(t, m.LinkEstate(alice, "0xestate"))
	linked, err := m.Linked()
	assert.NoError(t, err)
	assert.True(t, linked)

	tokens, err := m.TokensOwned(0, alice)
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), tokens)
}

func TestUnmappedVoteWeightAfterLink(t *testing.T) {
	m := seedLedger()
	m.AddVoteProperty(schema.VoteProperty{
		Name:        "Cedar Row House",
		TotalTokens: 800,
		IsActive:    true,
	})
	m.SetVoteBalance(0, alice, 300)
	assert.NoError(t, m.PurchaseTokens(alice, 0, 10, eth(50)))
	assert.NoError(t, m.LinkEstate(alice, "0xestate"))

	// an unmapped property keeps its vote-side weight even after the link
	assert.NoError(t, m.ApplyForRent(carol, 0, "Carol", "quiet tenant"))
	assert.NoError(t, m.VoteForRent(alice, 0, carol))
	votes, err := m.CandidateVotes(0, carol)
	assert.NoError(t, err)
	assert.Equal(t, uint64(300), votes)
}
