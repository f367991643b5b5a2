package brickfolio

import (
	"time"

	"github.com/brickfolio/brickfolio/ledger"
	"github.com/brickfolio/brickfolio/schema"
)

// PowerSource resolves a holder's voting power for a governance property.
// Power equals the token balance on the property's mapped identity and is
// fixed at cast time by the ledger.
type PowerSource interface {
	Power(prop schema.VoteProperty, holder string) (uint64, error)
}

// linkedPower queries the governance ledger's authoritative lookup, valid
// once the admin link to the ownership ledger is established.
type linkedPower struct {
	gov ledger.Governance
}

func (s linkedPower) Power(prop schema.VoteProperty, holder string) (uint64, error) {
	return s.gov.TokensOwned(prop.PropertyId, holder)
}

// dualLookupPower is the degrade path used before the ledgers are linked:
// the governance-side balance plus, when the property is mapped, the
// ownership-side balance. Deprecated once linking stabilizes.
type dualLookupPower struct {
	gov    ledger.Governance
	estate ledger.Estate
}

func (s dualLookupPower) Power(prop schema.VoteProperty, holder string) (uint64, error) {
	local, err := s.gov.TokenOwnership(prop.PropertyId, holder)
	if err != nil {
		return 0, err
	}
	if prop.MappedRealEstateId == 0 {
		return local, nil
	}
	mapped, err := s.estate.TokenBalance(prop.MappedRealEstateId, holder)
	if err != nil {
		log.Warn("ownership-side balance lookup failed, using local only", "propertyId", prop.PropertyId, "err", err)
		return local, nil
	}
	return local + mapped, nil
}

// Governance coordinates rent applications and token-weighted tenant
// selection.
type Governance struct {
	gov      ledger.Governance
	estate   ledger.Estate
	session  *ledger.Session
	onMutate func()
	onLink   func(estateAddr string)
	now      func() time.Time
}

func NewGovernance(gov ledger.Governance, estate ledger.Estate, session *ledger.Session, onMutate func(), onLink func(string)) *Governance {
	if onMutate == nil {
		onMutate = func() {}
	}
	if onLink == nil {
		onLink = func(string) {}
	}
	return &Governance{
		gov:      gov,
		estate:   estate,
		session:  session,
		onMutate: onMutate,
		onLink:   onLink,
		now:      time.Now,
	}
}

// powerSource picks the strategy per property: the linked lookup only
// resolves mapped properties, so an unmapped one keeps the vote-side
// balance even after the ledgers are linked.
func (g *Governance) powerSource(prop schema.VoteProperty) PowerSource {
	linked, err := g.gov.Linked()
	if err != nil {
		log.Warn("link status check failed, falling back to dual lookup", "err", err)
		linked = false
	}
	if linked && prop.MappedRealEstateId > 0 {
		return linkedPower{gov: g.gov}
	}
	return dualLookupPower{gov: g.gov, estate: g.estate}
}

func (g *Governance) Properties() ([]schema.VoteProperty, error) {
	return g.gov.Properties()
}

func (g *Governance) Applications(propertyId uint64) ([]schema.RentApplication, error) {
	return g.gov.PropertyApplications(propertyId)
}

// VotingPower is the caller's current power for a governance property.
func (g *Governance) VotingPower(propertyId uint64) (uint64, error) {
	account, err := g.session.Account()
	if err != nil {
		return 0, err
	}
	prop, err := g.voteProperty(propertyId)
	if err != nil {
		return 0, err
	}
	return g.powerSource(prop).Power(prop, account)
}

// Apply submits a rent application and returns its id. Token holders are
// landlords, not eligible tenants; and a second application while one is
// already open for the same pair is a caller-side duplicate.
func (g *Governance) Apply(propertyId uint64, name, description string) (uint64, error) {
	account, err := g.session.Account()
	if err != nil {
		return 0, err
	}
	prop, err := g.voteProperty(propertyId)
	if err != nil {
		return 0, err
	}
	power, err := g.powerSource(prop).Power(prop, account)
	if err != nil {
		return 0, err
	}
	if power > 0 {
		return 0, schema.ErrIneligibleApplicant
	}
	apps, err := g.gov.PropertyApplications(propertyId)
	if err != nil {
		return 0, err
	}
	for _, a := range apps {
		if a.IsActive && ledger.SameAccount(a.Applicant, account) {
			return 0, schema.ErrDuplicateApplication
		}
	}
	if err := g.gov.ApplyForRent(account, propertyId, name, description); err != nil {
		return 0, err
	}
	g.onMutate()

	// reconciliation must not default to 0, a valid application id
	apps, err = g.gov.PropertyApplications(propertyId)
	if err != nil {
		log.Warn("applied but id reconciliation failed", "err", err)
		return 0, schema.ErrIdUnresolved
	}
	var appId uint64
	found := false
	for _, a := range apps {
		if a.IsActive && ledger.SameAccount(a.Applicant, account) && (!found || a.ApplicationId > appId) {
			appId = a.ApplicationId
			found = true
		}
	}
	if !found {
		log.Warn("applied but no open application found", "propertyId", propertyId)
		return 0, schema.ErrIdUnresolved
	}
	return appId, nil
}

// Vote casts the caller's full current power for a candidate. One vote per
// application per account; the weight recorded by the ledger at cast time
// never changes afterwards.
func (g *Governance) Vote(applicationId uint64, candidate string) error {
	account, err := g.session.Account()
	if err != nil {
		return err
	}
	app, err := g.applicationByID(applicationId)
	if err != nil {
		return err
	}
	if !app.IsActive || g.now().Unix() >= app.VotingEndTime {
		return schema.ErrVotingClosed
	}
	voted, err := g.gov.HasVoted(applicationId, account)
	if err != nil {
		return err
	}
	if voted {
		return schema.ErrAlreadyVoted
	}
	prop, err := g.voteProperty(app.PropertyId)
	if err != nil {
		return err
	}
	power, err := g.powerSource(prop).Power(prop, account)
	if err != nil {
		return err
	}
	if power == 0 {
		return schema.ErrNoVotingPower
	}
	if err := g.gov.VoteForRent(account, applicationId, candidate); err != nil {
		return err
	}
	g.onMutate()
	return nil
}

// Finalize closes an application once its voting window has elapsed.
// Terminal: a second call errors rather than silently no-opping.
func (g *Governance) Finalize(applicationId uint64) error {
	account, err := g.session.Account()
	if err != nil {
		return err
	}
	app, err := g.applicationByID(applicationId)
	if err != nil {
		return err
	}
	if !app.IsActive {
		return schema.ErrAlreadyInactive
	}
	if g.now().Unix() < app.VotingEndTime {
		return schema.ErrVotingStillOpen
	}
	if err := g.gov.FinalizeApplication(account, applicationId); err != nil {
		return err
	}
	g.onMutate()
	return nil
}

// TallyVotes is a pure read used for rendering; it degrades to 0 on any
// query failure rather than blocking the view.
func (g *Governance) TallyVotes(applicationId uint64, candidate string) uint64 {
	votes, err := g.gov.CandidateVotes(applicationId, candidate)
	if err != nil {
		log.Warn("tally query failed", "applicationId", applicationId, "err", err)
		return 0
	}
	return votes
}

// HasVoted reports whether the caller already voted on an application.
func (g *Governance) HasVoted(applicationId uint64) (bool, error) {
	account, err := g.session.Account()
	if err != nil {
		return false, err
	}
	return g.gov.HasVoted(applicationId, account)
}

// LinkLedgers establishes the governance→ownership connection (admin
// operation). After it succeeds, the linked power strategy takes over.
func (g *Governance) LinkLedgers(estateAddr string) error {
	account, err := g.session.Account()
	if err != nil {
		return err
	}
	if err := g.gov.LinkEstate(account, estateAddr); err != nil {
		return err
	}
	g.onLink(estateAddr)
	return nil
}

func (g *Governance) voteProperty(propertyId uint64) (schema.VoteProperty, error) {
	props, err := g.gov.Properties()
	if err != nil {
		return schema.VoteProperty{}, err
	}
	for _, p := range props {
		if p.PropertyId == propertyId {
			return p, nil
		}
	}
	return schema.VoteProperty{}, schema.ErrNotFound
}

func (g *Governance) applicationByID(applicationId uint64) (schema.RentApplication, error) {
	props, err := g.gov.Properties()
	if err != nil {
		return schema.RentApplication{}, err
	}
	for _, p := range props {
		apps, err := g.gov.PropertyApplications(p.PropertyId)
		if err != nil {
			log.Warn("application scan failed for property", "propertyId", p.PropertyId, "err", err)
			continue
		}
		for _, a := range apps {
			if a.ApplicationId == applicationId {
				return a, nil
			}
		}
	}
	return schema.RentApplication{}, schema.ErrNotFound
}
