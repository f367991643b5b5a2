package brickfolio

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/brickfolio/brickfolio/cache"
	"github.com/brickfolio/brickfolio/ledger"
	"github.com/brickfolio/brickfolio/schema"
)

const (
	seller = "0xseller01"
	buyer  = "0xbuyer02"
	tenant = "0xtenant03"
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type testEnv struct {
	mem     *ledger.MemLedger
	session *ledger.Session
	cache   *cache.Cache
	catalog *Catalog
}

// newTestEnv wires a catalog over an estate (usually the mem ledger,
// optionally wrapped) with a connected session.
func newTestEnv(t *testing.T, mem *ledger.MemLedger, estate ledger.Estate, account string) *testEnv {
	t.Helper()
	if estate == nil {
		estate = mem
	}
	localCache, err := cache.NewLocalCache(time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	session := ledger.NewSession()
	session.Connect(account)
	return &testEnv{
		mem:     mem,
		session: session,
		cache:   localCache,
		catalog: NewCatalog(estate, session, localCache, nil),
	}
}

func seedProperties(mem *ledger.MemLedger) {
	mem.AddProperty(schema.Property{
		Name:                "Harborview Flats",
		Location:            "Rotterdam, NL",
		Description:         "12-unit waterfront apartment block",
		TotalCost:           eth(5000),
		TotalNumberOfTokens: 1000,
		PricePerToken:       eth(5),
		IsActive:            true,
	})
	mem.AddProperty(schema.Property{
		Name:                "Cedar Row House",
		Location:            "Leipzig, DE",
		TotalCost:           eth(2400),
		TotalNumberOfTokens: 800,
		PricePerToken:       eth(3),
		IsActive:            true,
		IsRentable:          true,
		MonthlyRent:         eth(1),
	})
}

// flakyEstate injects targeted query failures over the mem ledger.
type flakyEstate struct {
	ledger.Estate
	failCount      bool
	failBalanceIdx map[uint64]bool
	failDetailsIdx map[uint64]bool
}

func (f *flakyEstate) PropertiesCount() (uint64, error) {
	if f.failCount {
		return 0, errors.New("rpc down")
	}
	return f.Estate.PropertiesCount()
}

func (f *flakyEstate) PropertyDetails(idx uint64) (schema.Property, error) {
	if f.failDetailsIdx[idx] {
		return schema.Property{}, errors.New("rpc down")
	}
	return f.Estate.PropertyDetails(idx)
}

func (f *flakyEstate) TokenBalance(idx uint64, holder string) (uint64, error) {
	if f.failBalanceIdx[idx] {
		return 0, errors.New("rpc down")
	}
	return f.Estate.TokenBalance(idx, holder)
}

// flakyGov fails tally reads.
type flakyGov struct {
	ledger.Governance
	failTally bool
}

func (f *flakyGov) CandidateVotes(applicationId uint64, candidate string) (uint64, error) {
	if f.failTally {
		return 0, errors.New("rpc down")
	}
	return f.Governance.CandidateVotes(applicationId, candidate)
}
