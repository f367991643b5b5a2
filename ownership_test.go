package brickfolio

import (
	"testing"

	"github.com/brickfolio/brickfolio/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPortfolioAggregation(t *testing.T) {
	mem := ledger.NewMemLedger()
	seedProperties(mem)
	env := newTestEnv(t, mem, nil, buyer)
	_, err := env.catalog.LoadAll()
	assert.NoError(t, err)

	assert.NoError(t, mem.PurchaseTokens(buyer, 0, 10, eth(50)))

	portfolio := NewPortfolio(mem, env.catalog, env.session)
	entries, err := portfolio.LoadMine()
	assert.NoError(t, err)

	// zero-balance properties are excluded
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, uint64(0), entries[0].PropertyId)
	assert.Equal(t, uint64(10), entries[0].TokensHeld)
	assert.Equal(t, eth(50), entries[0].RawValue)
	assert.True(t, entries[0].InvestmentValue.Equal(decimal.NewFromInt(50)))

	sum := portfolio.Summary(entries)
	assert.Equal(t, 1, sum.Properties)
	assert.Equal(t, uint64(10), sum.TotalTokens)
	assert.True(t, sum.TotalValue.Equal(decimal.NewFromInt(50)))
}

func TestPortfolioPartialResult(t *testing.T) {
	mem := ledger.NewMemLedger()
	seedProperties(mem)
	assert.NoError(t, mem.PurchaseTokens(buyer, 0, 10, eth(50)))
	assert.NoError(t, mem.PurchaseTokens(buyer, 1, 5, eth(15)))

	flaky := &flakyEstate{Estate: mem, failBalanceIdx: map[uint64]bool{0: true}}
	env := newTestEnv(t, mem, flaky, buyer)
	_, err := env.catalog.LoadAll()
	assert.NoError(t, err)

	// one property's irregularity must not hide the rest of the holdings
	portfolio := NewPortfolio(flaky, env.catalog, env.session)
	entries, err := portfolio.LoadMine()
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, uint64(1), entries[0].PropertyId)
	assert.Equal(t, uint64(5), entries[0].TokensHeld)
}

func TestPortfolioRequiresSession(t *testing.T) {
	mem := ledger.NewMemLedger()
	seedProperties(mem)
	env := newTestEnv(t, mem, nil, buyer)
	env.session.Disconnect()

	portfolio := NewPortfolio(mem, env.catalog, env.session)
	_, err := portfolio.LoadMine()
	assert.Error(t, err)
}
