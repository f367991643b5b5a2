package brickfolio

import (
	"math/big"
	"sync"

	"github.com/brickfolio/brickfolio/ledger"
	"github.com/brickfolio/brickfolio/schema"
	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
)

// Portfolio aggregates the connected holder's per-property balances into a
// holdings view. Balance lookups are independent reads, so they fan out
// concurrently; one property's irregularity must never hide the rest of
// the holdings.
type Portfolio struct {
	estate  ledger.Estate
	catalog *Catalog
	session *ledger.Session
}

func NewPortfolio(estate ledger.Estate, catalog *Catalog, session *ledger.Session) *Portfolio {
	return &Portfolio{
		estate:  estate,
		catalog: catalog,
		session: session,
	}
}

// Load resolves the holder's balance for every catalog property. Zero
// balances are excluded; per-property query errors are logged and skipped,
// yielding a partial result.
func (p *Portfolio) Load(holder string) ([]schema.OwnershipEntry, error) {
	properties := p.catalog.Properties()
	if len(properties) == 0 {
		var err error
		properties, err = p.catalog.LoadAll()
		if err != nil && len(properties) == 0 {
			return nil, err
		}
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		entries = make([]schema.OwnershipEntry, 0, len(properties))
	)
	pool, _ := ants.NewPoolWithFunc(10, func(i interface{}) {
		defer wg.Done()
		prop := i.(schema.Property)
		tokens, err := p.estate.TokenBalance(prop.PropertyId, holder)
		if err != nil {
			log.Warn("balance lookup failed, skipping property", "idx", prop.PropertyId, "err", err)
			return
		}
		if tokens == 0 {
			return
		}
		raw := new(big.Int).Mul(prop.PricePerToken, new(big.Int).SetUint64(tokens))
		mu.Lock()
		entries = append(entries, schema.OwnershipEntry{
			Property:        prop,
			TokensHeld:      tokens,
			RawValue:        raw,
			InvestmentValue: schema.ToDisplay(raw),
		})
		mu.Unlock()
	})
	defer pool.Release()

	for _, prop := range properties {
		wg.Add(1)
		_ = pool.Invoke(prop)
	}
	wg.Wait()

	return entries, nil
}

// LoadMine is Load for the session account.
func (p *Portfolio) LoadMine() ([]schema.OwnershipEntry, error) {
	holder, err := p.session.Account()
	if err != nil {
		return nil, err
	}
	return p.Load(holder)
}

// Summary folds a holdings list into the dashboard totals.
func (p *Portfolio) Summary(entries []schema.OwnershipEntry) schema.PortfolioSummary {
	sum := schema.PortfolioSummary{
		Properties: len(entries),
		TotalValue: decimal.Zero,
	}
	for _, e := range entries {
		sum.TotalTokens += e.TokensHeld
		sum.TotalValue = sum.TotalValue.Add(e.InvestmentValue)
	}
	return sum
}
