package brickfolio

import (
	"errors"
	"testing"
	"time"

	"github.com/brickfolio/brickfolio/ledger"
	"github.com/brickfolio/brickfolio/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedGovernance adds a governance property with 100 tokens, mapped to the
// Harborview index on the ownership side.
func seedGovernance(mem *ledger.MemLedger) uint64 {
	seedProperties(mem)
	return mem.AddVoteProperty(schema.VoteProperty{
		Name:               "Harborview Flats",
		Location:           "Rotterdam, NL",
		TotalTokens:        100,
		IsActive:           true,
		MappedRealEstateId: 0,
	})
}

func govFor(env *testEnv, account string) *Governance {
	session := ledger.NewSession()
	session.Connect(account)
	return NewGovernance(env.mem, env.mem, session, nil, nil)
}

func TestApplyEligibility(t *testing.T) {
	mem := ledger.NewMemLedger()
	propId := seedGovernance(mem)
	mem.SetVoteBalance(propId, seller, 40)
	env := newTestEnv(t, mem, nil, seller)

	// a token holder is a landlord, not an eligible tenant
	gov := NewGovernance(mem, mem, env.session, nil, nil)
	_, err := gov.Apply(propId, "Sam", "quiet tenant")
	assert.ErrorIs(t, err, schema.ErrIneligibleApplicant)

	tenantGov := govFor(env, tenant)
	appId, err := tenantGov.Apply(propId, "Sam", "quiet tenant")
	require.NoError(t, err)

	// one open application per applicant per property
	_, err = tenantGov.Apply(propId, "Sam", "second try")
	assert.ErrorIs(t, err, schema.ErrDuplicateApplication)

	apps, err := tenantGov.Applications(propId)
	require.NoError(t, err)
	require.Equal(t, 1, len(apps))
	assert.Equal(t, appId, apps[0].ApplicationId)
	assert.Equal(t, tenant, apps[0].Applicant)
}

// blindApplicationBook permits a fixed number of application reads, then
// fails. One allowed read lets the duplicate scan pass while the id
// reconciliation read fails.
type blindApplicationBook struct {
	ledger.Governance
	allow int
}

func (b *blindApplicationBook) PropertyApplications(propertyId uint64) ([]schema.RentApplication, error) {
	if b.allow <= 0 {
		return nil, errors.New("rpc down")
	}
	b.allow--
	return b.Governance.PropertyApplications(propertyId)
}

func TestApplyIdUnresolved(t *testing.T) {
	mem := ledger.NewMemLedger()
	propId := seedGovernance(mem)

	blind := &blindApplicationBook{Governance: mem, allow: 1}
	session := ledger.NewSession()
	session.Connect(tenant)
	gov := NewGovernance(blind, mem, session, nil, nil)

	_, err := gov.Apply(propId, "Sam", "quiet tenant")
	assert.ErrorIs(t, err, schema.ErrIdUnresolved)

	// the application itself landed
	apps, err := mem.PropertyApplications(propId)
	require.NoError(t, err)
	require.Equal(t, 1, len(apps))
	assert.Equal(t, tenant, apps[0].Applicant)
	assert.True(t, apps[0].IsActive)
}

func TestVoteRules(t *testing.T) {
	mem := ledger.NewMemLedger()
	propId := seedGovernance(mem)
	mem.SetVoteBalance(propId, seller, 40)
	mem.SetVoteBalance(propId, buyer, 20)
	env := newTestEnv(t, mem, nil, seller)

	tenantGov := govFor(env, tenant)
	appId, err := tenantGov.Apply(propId, "Sam", "quiet tenant")
	require.NoError(t, err)

	// no power, no vote
	err = tenantGov.Vote(appId, tenant)
	assert.ErrorIs(t, err, schema.ErrNoVotingPower)

	sellerGov := NewGovernance(mem, mem, env.session, nil, nil)
	require.NoError(t, sellerGov.Vote(appId, tenant))
	err = sellerGov.Vote(appId, tenant)
	assert.ErrorIs(t, err, schema.ErrAlreadyVoted)

	voted, err := sellerGov.HasVoted(appId)
	require.NoError(t, err)
	assert.True(t, voted)

	assert.Equal(t, uint64(40), sellerGov.TallyVotes(appId, tenant))
}

func TestVoteWeightFixedAtCastTime(t *testing.T) {
	mem := ledger.NewMemLedger()
	propId := seedGovernance(mem)
	mem.SetVoteBalance(propId, seller, 40)
	env := newTestEnv(t, mem, nil, seller)

	tenantGov := govFor(env, tenant)
	appId, err := tenantGov.Apply(propId, "Sam", "quiet tenant")
	require.NoError(t, err)

	sellerGov := NewGovernance(mem, mem, env.session, nil, nil)
	require.NoError(t, sellerGov.Vote(appId, tenant))

	// balance changes after the cast do not move the tally
	mem.SetVoteBalance(propId, seller, 5)
	assert.Equal(t, uint64(40), sellerGov.TallyVotes(appId, tenant))
}

func TestFinalizeWindowAndTerminality(t *testing.T) {
	mem := ledger.NewMemLedger()
	propId := seedGovernance(mem)
	mem.SetVoteBalance(propId, seller, 60)
	mem.SetVotingPeriod(24 * time.Hour)

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mem.SetNow(func() time.Time { return start })

	env := newTestEnv(t, mem, nil, seller)
	tenantGov := govFor(env, tenant)
	appId, err := tenantGov.Apply(propId, "Sam", "quiet tenant")
	require.NoError(t, err)

	sellerGov := NewGovernance(mem, mem, env.session, nil, nil)
	sellerGov.now = func() time.Time { return start }
	require.NoError(t, sellerGov.Vote(appId, tenant))

	err = sellerGov.Finalize(appId)
	assert.ErrorIs(t, err, schema.ErrVotingStillOpen)

	after := start.Add(25 * time.Hour)
	mem.SetNow(func() time.Time { return after })
	sellerGov.now = func() time.Time { return after }

	// voting closed once the window elapses
	lateGov := govFor(env, buyer)
	lateGov.now = func() time.Time { return after }
	mem.SetVoteBalance(propId, buyer, 10)
	err = lateGov.Vote(appId, tenant)
	assert.ErrorIs(t, err, schema.ErrVotingClosed)

	require.NoError(t, sellerGov.Finalize(appId))
	err = sellerGov.Finalize(appId)
	assert.ErrorIs(t, err, schema.ErrAlreadyInactive)

	// 60 of 100 tokens backed the applicant: approved
	apps, err := sellerGov.Applications(propId)
	require.NoError(t, err)
	require.Equal(t, 1, len(apps))
	assert.True(t, apps[0].IsApproved)
	assert.Equal(t, tenant, apps[0].SelectedRenter)
}

func TestTallyDegradesToZero(t *testing.T) {
	mem := ledger.NewMemLedger()
	propId := seedGovernance(mem)
	mem.SetVoteBalance(propId, seller, 40)
	env := newTestEnv(t, mem, nil, seller)

	tenantGov := govFor(env, tenant)
	appId, err := tenantGov.Apply(propId, "Sam", "quiet tenant")
	require.NoError(t, err)

	sellerGov := NewGovernance(mem, mem, env.session, nil, nil)
	require.NoError(t, sellerGov.Vote(appId, tenant))

	flaky := &flakyGov{Governance: mem, failTally: true}
	flakyView := NewGovernance(flaky, mem, env.session, nil, nil)
	assert.Equal(t, uint64(0), flakyView.TallyVotes(appId, tenant))
}

func TestPowerStrategySelection(t *testing.T) {
	mem := ledger.NewMemLedger()
	unmappedId := seedGovernance(mem)
	mappedId := mem.AddVoteProperty(schema.VoteProperty{
		Name:               "Cedar Row House",
		TotalTokens:        800,
		IsActive:           true,
		MappedRealEstateId: 1,
	})
	env := newTestEnv(t, mem, nil, seller)

	mem.SetVoteBalance(unmappedId, seller, 7)
	require.NoError(t, mem.PurchaseTokens(seller, 1, 10, eth(30)))

	gov := NewGovernance(mem, mem, env.session, nil, nil)
	unmapped := schema.VoteProperty{PropertyId: unmappedId}
	mapped := schema.VoteProperty{PropertyId: mappedId, MappedRealEstateId: 1}

	// pre-link everything resolves through the dual lookup
	_, ok := gov.powerSource(unmapped).(dualLookupPower)
	assert.True(t, ok)
	_, ok = gov.powerSource(mapped).(dualLookupPower)
	assert.True(t, ok)

	power, err := gov.VotingPower(unmappedId)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), power)

	linked := false
	adminGov := NewGovernance(mem, mem, env.session, nil, func(string) { linked = true })
	require.NoError(t, adminGov.LinkLedgers("0xestate"))
	assert.True(t, linked)

	// post-link only the mapped property takes the linked path
	_, ok = gov.powerSource(mapped).(linkedPower)
	assert.True(t, ok)
	_, ok = gov.powerSource(unmapped).(dualLookupPower)
	assert.True(t, ok)

	power, err = gov.VotingPower(mappedId)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), power)

	// the unmapped property keeps its vote-side balance
	power, err = gov.VotingPower(unmappedId)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), power)
}

func TestDualLookupSwallowsEstateErrors(t *testing.T) {
	mem := ledger.NewMemLedger()
	seedProperties(mem)
	propId := mem.AddVoteProperty(schema.VoteProperty{
		Name:               "Cedar Row House",
		TotalTokens:        80,
		IsActive:           true,
		MappedRealEstateId: 1,
	})
	mem.SetVoteBalance(propId, seller, 3)
	require.NoError(t, mem.PurchaseTokens(seller, 1, 4, eth(12)))

	flaky := &flakyEstate{Estate: mem, failBalanceIdx: map[uint64]bool{1: true}}
	env := newTestEnv(t, mem, nil, seller)

	gov := NewGovernance(mem, flaky, env.session, nil, nil)
	power, err := gov.VotingPower(propId)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), power)

	// with the estate healthy both sides are summed
	healthy := NewGovernance(mem, mem, env.session, nil, nil)
	power, err = healthy.VotingPower(propId)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), power)
}
