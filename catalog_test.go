package brickfolio

import (
	"testing"

	"github.com/brickfolio/brickfolio/ledger"
	"github.com/brickfolio/brickfolio/schema"
	"github.com/stretchr/testify/assert"
)

func TestCatalogLoadSkipsHoles(t *testing.T) {
	mem := ledger.NewMemLedger()
	seedProperties(mem)
	mem.AddHole()
	env := newTestEnv(t, mem, nil, buyer)

	properties, err := env.catalog.LoadAll()
	assert.NoError(t, err)
	assert.Equal(t, 2, len(properties))
	assert.Equal(t, "Harborview Flats", properties[0].Name)
	assert.Equal(t, "Cedar Row House", properties[1].Name)
}

func TestCatalogRequiresSession(t *testing.T) {
	mem := ledger.NewMemLedger()
	seedProperties(mem)
	env := newTestEnv(t, mem, nil, buyer)
	env.session.Disconnect()

	_, err := env.catalog.LoadAll()
	assert.ErrorIs(t, err, schema.ErrNotConnected)
}

func TestCatalogStaleRetention(t *testing.T) {
	mem := ledger.NewMemLedger()
	seedProperties(mem)
	flaky := &flakyEstate{Estate: mem}
	env := newTestEnv(t, mem, flaky, buyer)

	properties, err := env.catalog.LoadAll()
	assert.NoError(t, err)
	assert.Equal(t, 2, len(properties))

	// a transient enumeration failure must not blank the working catalog
	flaky.failCount = true
	properties, err = env.catalog.LoadAll()
	assert.ErrorIs(t, err, schema.ErrQueryFailed)
	assert.Equal(t, 2, len(properties))
	assert.Equal(t, 2, env.catalog.Size())
}

func TestCatalogEmptyLoadNoPrior(t *testing.T) {
	mem := ledger.NewMemLedger()
	env := newTestEnv(t, mem, nil, buyer)

	properties, err := env.catalog.LoadAll()
	assert.ErrorIs(t, err, schema.ErrNotFound)
	assert.Equal(t, 0, len(properties))
}

func TestCatalogGetByID(t *testing.T) {
	mem := ledger.NewMemLedger()
	seedProperties(mem)
	hole := mem.AddHole()
	env := newTestEnv(t, mem, nil, buyer)
	_, err := env.catalog.LoadAll()
	assert.NoError(t, err)

	p, err := env.catalog.GetByID(1)
	assert.NoError(t, err)
	assert.Equal(t, "Cedar Row House", p.Name)

	_, err = env.catalog.GetByID(hole)
	assert.ErrorIs(t, err, schema.ErrNotFound)

	_, err = env.catalog.GetByID(99)
	assert.ErrorIs(t, err, schema.ErrNotFound)
}

func TestCatalogGetByIDQueryFailure(t *testing.T) {
	mem := ledger.NewMemLedger()
	seedProperties(mem)
	flaky := &flakyEstate{Estate: mem, failDetailsIdx: map[uint64]bool{1: true}}
	env := newTestEnv(t, mem, flaky, buyer)

	// a failed ledger fallback read is a query failure, not a miss
	_, err := env.catalog.GetByID(1)
	assert.ErrorIs(t, err, schema.ErrQueryFailed)
	assert.NotErrorIs(t, err, schema.ErrNotFound)

	_, err = env.catalog.GetByID(99)
	assert.ErrorIs(t, err, schema.ErrNotFound)
}

func TestCatalogInvalidate(t *testing.T) {
	mem := ledger.NewMemLedger()
	seedProperties(mem)
	env := newTestEnv(t, mem, nil, buyer)
	_, err := env.catalog.LoadAll()
	assert.NoError(t, err)
	assert.Equal(t, 2, env.catalog.Size())

	env.catalog.Invalidate()
	assert.Equal(t, 0, env.catalog.Size())

	// rebuilds from the ledger on next load
	properties, err := env.catalog.LoadAll()
	assert.NoError(t, err)
	assert.Equal(t, 2, len(properties))
}
