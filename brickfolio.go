// Package brickfolio is the domain-orchestration layer for tokenized
// real-estate: it reflects the authoritative ledgers (ownership,
// marketplace, rental, governance) into application entities, enforces the
// business rules around each intent, and reconciles local caches after
// every mutating call. It never owns durable domain state.
package brickfolio

import (
	"math/big"
	"time"

	"github.com/brickfolio/brickfolio/cache"
	"github.com/brickfolio/brickfolio/config"
	"github.com/brickfolio/brickfolio/ledger"
	"github.com/brickfolio/brickfolio/schema"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
)

const (
	cacheKeyPortfolio    = "portfolio:holdings"
	cacheKeyRentals      = "rental:agreements"
	cacheKeyApplications = "governance:applications"
)

type Brickfolio struct {
	engine    *gin.Engine
	scheduler *gocron.Scheduler

	store *Store
	wdb   *Wdb
	cache *cache.Cache
	cfg   *config.Config

	session *ledger.Session
	estate  ledger.Estate
	gov     ledger.Governance

	catalog    *Catalog
	portfolio  *Portfolio
	market     *Marketplace
	rental     *Rental
	governance *Governance
}

func New(
	boltDirPath, mySqlDsn string, sqliteDir string, useSqlite bool,
	chainFilePath string, dev bool,
) *Brickfolio {
	kv, err := NewStore(boltDirPath)
	if err != nil {
		panic(err)
	}

	wdb := &Wdb{}
	if useSqlite {
		wdb = NewSqliteDb(sqliteDir)
	} else {
		wdb = NewMysqlDb(mySqlDsn)
	}
	if err := wdb.Migrate(); err != nil {
		panic(err)
	}

	cfg := config.New(chainFilePath, mySqlDsn, sqliteDir, useSqlite)

	localCache, err := cache.NewLocalCache(10 * time.Minute)
	if err != nil {
		panic(err)
	}

	session := ledger.NewSession()

	var estate ledger.Estate
	var gov ledger.Governance
	if dev {
		mem := devLedger()
		estate, gov = mem, mem
	} else {
		chain := cfg.Chain()
		eth, err := ledger.NewEthLedger(chain.RPCURL, chain.EstateAddress, chain.VoteAddress, chain.KeyPath)
		if err != nil {
			panic(err)
		}
		estate, gov = eth, eth
		session.Connect(eth.SignerAddress())
	}

	s := &Brickfolio{
		engine:    gin.Default(),
		scheduler: gocron.NewScheduler(time.UTC),
		store:     kv,
		wdb:       wdb,
		cache:     localCache,
		cfg:       cfg,
		session:   session,
		estate:    estate,
		gov:       gov,
	}

	s.catalog = NewCatalog(estate, session, localCache, kv)
	s.portfolio = NewPortfolio(estate, s.catalog, session)
	s.market = NewMarketplace(estate, s.catalog, session, s.invalidateHoldings)
	s.rental = NewRental(estate, s.catalog, session, s.invalidateRentals)
	s.governance = NewGovernance(gov, estate, session, s.invalidateGovernance, func(addr string) {
		if err := cfg.RecordLink(addr); err != nil {
			log.Warn("persist link state", "err", err)
		}
	})

	// ownership and voting power are account-scoped; a wallet account
	// change invalidates everything
	session.OnAccountChange(func(account string) {
		log.Info("account changed, invalidating caches", "account", account)
		s.invalidateAll()
	})

	return s
}

func (s *Brickfolio) Run(port string) {
	go s.runAPI(port)
	go s.runJobs()
}

func (s *Brickfolio) Close() {
	s.scheduler.Stop()
	if err := s.store.Close(); err != nil {
		log.Warn("close store", "err", err)
	}
	s.wdb.Close()
	s.cfg.Close()
	log.Info("brickfolio closed")
}

// scoped invalidation: a mutation only drops the caches its entity family
// feeds, not the whole world

func (s *Brickfolio) invalidateHoldings() {
	s.catalog.Invalidate()
	s.cache.Invalidate(cacheKeyPortfolio)
}

func (s *Brickfolio) invalidateRentals() {
	s.catalog.Invalidate()
	s.cache.Invalidate(cacheKeyRentals)
}

func (s *Brickfolio) invalidateGovernance() {
	s.cache.Invalidate(cacheKeyApplications)
}

func (s *Brickfolio) invalidateAll() {
	s.catalog.Invalidate()
	s.cache.Invalidate(cacheKeyPortfolio, cacheKeyRentals, cacheKeyApplications)
}

// devLedger seeds an in-memory ledger so the service runs end-to-end
// without a node.
func devLedger() *ledger.MemLedger {
	mem := ledger.NewMemLedger()
	eth := func(n int64) *big.Int {
		return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
	}
	mem.AddProperty(schema.Property{
		Name:                "Harborview Flats",
		Location:            "Rotterdam, NL",
		Description:         "12-unit waterfront apartment block",
		ImageURI:            "ipfs://harborview",
		TotalCost:           eth(5000),
		TotalNumberOfTokens: 1000,
		PricePerToken:       eth(5),
		IsActive:            true,
	})
	mem.AddProperty(schema.Property{
		Name:                "Cedar Row House",
		Location:            "Leipzig, DE",
		Description:         "Renovated townhouse with a garden office",
		ImageURI:            "ipfs://cedar-row",
		TotalCost:           eth(2400),
		TotalNumberOfTokens: 800,
		PricePerToken:       eth(3),
		IsActive:            true,
		IsRentable:          true,
		MonthlyRent:         eth(1),
	})
	mem.AddVoteProperty(schema.VoteProperty{
		Name:               "Cedar Row House",
		Location:           "Leipzig, DE",
		TotalTokens:        800,
		IsActive:           true,
		IsRentable:         true,
		MonthlyRent:        eth(1),
		MappedRealEstateId: 1,
	})
	return mem
}
