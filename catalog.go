package brickfolio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/brickfolio/brickfolio/cache"
	"github.com/brickfolio/brickfolio/ledger"
	"github.com/brickfolio/brickfolio/schema"
)

const cacheKeyCatalog = "catalog:properties"

// Catalog reflects the ledger's property set. It holds the only local copy
// of property attributes; everything downstream (portfolio, marketplace,
// rental joins) reads through it.
type Catalog struct {
	estate  ledger.Estate
	session *ledger.Session
	cache   *cache.Cache
	store   *Store // optional warm-start snapshot

	mu         sync.RWMutex
	properties []schema.Property
}

func NewCatalog(estate ledger.Estate, session *ledger.Session, cache *cache.Cache, store *Store) *Catalog {
	c := &Catalog{
		estate:  estate,
		session: session,
		cache:   cache,
		store:   store,
	}
	c.warmStart()
	return c
}

// warmStart serves the last good snapshot until the first live load lands.
func (c *Catalog) warmStart() {
	if c.store == nil {
		return
	}
	properties, err := c.store.LoadCatalogSnapshot()
	if err != nil || len(properties) == 0 {
		return
	}
	c.mu.Lock()
	c.properties = properties
	c.mu.Unlock()
	log.Info("catalog warm start", "properties", len(properties))
}

// LoadAll enumerates the ledger and rebuilds the catalog. Sparse or
// soft-deleted entries (empty name) are skipped. A zero-result or failed
// load never clears a previously valid catalog: the stale set is retained
// and the error surfaced, so a transient query failure cannot blank a
// working view.
func (c *Catalog) LoadAll() ([]schema.Property, error) {
	if _, err := c.session.Account(); err != nil {
		return c.Properties(), err
	}

	count, err := c.estate.PropertiesCount()
	if err != nil {
		return c.stale(fmt.Errorf("%w: %v", schema.ErrQueryFailed, err))
	}

	properties := make([]schema.Property, 0, count)
	for i := uint64(0); i < count; i++ {
		p, err := c.estate.PropertyDetails(i)
		if err != nil {
			return c.stale(fmt.Errorf("%w: index %d: %v", schema.ErrQueryFailed, i, err))
		}
		if p.IsHole() {
			log.Debug("skipping hole", "idx", i)
			continue
		}
		properties = append(properties, p)
	}

	if len(properties) == 0 {
		return c.stale(schema.ErrNotFound)
	}

	c.mu.Lock()
	c.properties = properties
	c.mu.Unlock()

	if err := c.cache.SetJSON(cacheKeyCatalog, properties); err != nil {
		log.Warn("cache catalog snapshot", "err", err)
	}
	if c.store != nil {
		if err := c.store.SaveCatalogSnapshot(properties); err != nil {
			log.Warn("persist catalog snapshot", "err", err)
		}
	}
	return properties, nil
}

// stale returns the retained catalog together with the load error.
func (c *Catalog) stale(err error) ([]schema.Property, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.properties) > 0 {
		log.Warn("catalog load failed, keeping stale data", "err", err, "properties", len(c.properties))
		return c.properties, err
	}
	return nil, err
}

// Properties returns the cached catalog without touching the ledger.
func (c *Catalog) Properties() []schema.Property {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]schema.Property, len(c.properties))
	copy(out, c.properties)
	return out
}

// GetByID resolves one property. Cache first; a miss goes to the ledger so
// a detail view works before the full catalog has been loaded.
func (c *Catalog) GetByID(id uint64) (schema.Property, error) {
	c.mu.RLock()
	for _, p := range c.properties {
		if p.PropertyId == id {
			c.mu.RUnlock()
			return p, nil
		}
	}
	c.mu.RUnlock()

	p, err := c.estate.PropertyDetails(id)
	if err != nil {
		// an out-of-range index is a miss; anything else is a query
		// failure and must not masquerade as one
		if errors.Is(err, schema.ErrNotFound) {
			return schema.Property{}, schema.ErrNotFound
		}
		return schema.Property{}, fmt.Errorf("%w: index %d: %v", schema.ErrQueryFailed, id, err)
	}
	if p.IsHole() {
		return schema.Property{}, schema.ErrNotFound
	}
	return p, nil
}

// Invalidate drops the in-memory and cache copies. The next LoadAll
// rebuilds from the ledger.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.properties = nil
	c.mu.Unlock()
	c.cache.Invalidate(cacheKeyCatalog)
}

func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.properties)
}
