package ledger

import (
	"math/big"
	"sync"
	"time"

	"github.com/brickfolio/brickfolio/schema"
)

// MemLedger is a deterministic in-memory ledger implementing both the
// Estate and Governance surfaces with the same rules the on-chain
// contracts enforce. It backs dev mode and the test suite.
type MemLedger struct {
	mu  sync.Mutex
	now func() time.Time

	properties []schema.Property
	balances   map[uint64]map[string]uint64 // idx -> holder -> tokens
	orders     []schema.SellOrder
	rentals    []schema.RentalAgreement

	voteProps    []schema.VoteProperty
	voteBalances map[uint64]map[string]uint64 // governance-side holdings
	applications []schema.RentApplication
	voted        map[uint64]map[string]bool   // appId -> voter -> cast
	tally        map[uint64]map[string]uint64 // appId -> candidate -> weight
	linked       bool
	estateAddr   string

	votingPeriod time.Duration
	leaseTerm    time.Duration
}

func NewMemLedger() *MemLedger {
	return &MemLedger{
		now:          time.Now,
		balances:     make(map[uint64]map[string]uint64),
		voteBalances: make(map[uint64]map[string]uint64),
		voted:        make(map[uint64]map[string]bool),
		tally:        make(map[uint64]map[string]uint64),
		votingPeriod: 7 * 24 * time.Hour,
		leaseTerm:    schema.DefaultLeaseTerm,
	}
}

// SetNow injects the clock. Tests use this to cross rent and voting
// window boundaries without sleeping.
func (m *MemLedger) SetNow(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemLedger) SetVotingPeriod(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votingPeriod = d
}

// AddProperty registers a property and returns its index. Registration is
// operator-only on chain; dev seeding and tests call it directly.
func (m *MemLedger) AddProperty(p schema.Property) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.PropertyId = uint64(len(m.properties))
	m.properties = append(m.properties, p)
	return p.PropertyId
}

// AddHole appends an empty slot, mimicking a sparse or soft-deleted ledger
// entry.
func (m *MemLedger) AddHole() uint64 {
	return m.AddProperty(schema.Property{})
}

func (m *MemLedger) AddVoteProperty(p schema.VoteProperty) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.PropertyId = uint64(len(m.voteProps))
	m.voteProps = append(m.voteProps, p)
	return p.PropertyId
}

// SetVoteBalance seeds a governance-side holding (pre-link token sales).
func (m *MemLedger) SetVoteBalance(propertyId uint64, holder string, tokens uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.voteBalances[propertyId] == nil {
		m.voteBalances[propertyId] = make(map[string]uint64)
	}
	m.voteBalances[propertyId][holder] = tokens
}

// ---- Estate reads ----

func (m *MemLedger) PropertiesCount() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(len(m.properties)), nil
}

func (m *MemLedger) PropertyDetails(idx uint64) (schema.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx >= uint64(len(m.properties)) {
		return schema.Property{}, schema.ErrNotFound
	}
	return m.properties[idx], nil
}

func (m *MemLedger) TokenBalance(idx uint64, holder string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx >= uint64(len(m.properties)) {
		return 0, schema.ErrNotFound
	}
	return m.balances[idx][holder], nil
}

func (m *MemLedger) PropertyRentalInfo(idx uint64) (bool, *big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx >= uint64(len(m.properties)) {
		return false, nil, schema.ErrNotFound
	}
	p := m.properties[idx]
	return p.IsRentable, cloneBig(p.MonthlyRent), nil
}

func (m *MemLedger) AllSellOrders() ([]schema.SellOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schema.SellOrder, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func (m *MemLedger) SellOrdersBySeller(seller string) ([]schema.SellOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schema.SellOrder, 0)
	for _, o := range m.orders {
		if SameAccount(o.Seller, seller) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemLedger) TenantRentals(tenant string) ([]schema.RentalAgreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schema.RentalAgreement, 0)
	for _, r := range m.rentals {
		if SameAccount(r.Tenant, tenant) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ---- Estate writes ----

func (m *MemLedger) PurchaseTokens(signer string, idx, amount uint64, value *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx >= uint64(len(m.properties)) {
		return schema.ErrNotFound
	}
	p := m.properties[idx]
	if p.IsHole() || !p.IsActive {
		return schema.ErrNotFound
	}
	if amount == 0 {
		return schema.ErrInvalidAmount
	}
	var held uint64
	for _, n := range m.balances[idx] {
		held += n
	}
	if held+amount > p.TotalNumberOfTokens {
		return schema.ErrInsufficientBalance
	}
	cost := new(big.Int).Mul(p.PricePerToken, new(big.Int).SetUint64(amount))
	if value == nil || cost.Cmp(value) != 0 {
		return schema.ErrPaymentMismatch
	}
	if m.balances[idx] == nil {
		m.balances[idx] = make(map[string]uint64)
	}
	m.balances[idx][signer] += amount
	return nil
}

func (m *MemLedger) RedeemTokens(signer string, idx, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx >= uint64(len(m.properties)) {
		return schema.ErrNotFound
	}
	if amount == 0 || m.unlistedLocked(idx, signer) < amount {
		return schema.ErrInsufficientBalance
	}
	m.balances[idx][signer] -= amount
	return nil
}

func (m *MemLedger) CreateSellOrder(signer string, idx, amount uint64, pricePerToken *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx >= uint64(len(m.properties)) {
		return schema.ErrNotFound
	}
	if pricePerToken == nil || pricePerToken.Sign() <= 0 {
		return schema.ErrInvalidPrice
	}
	if amount == 0 || m.unlistedLocked(idx, signer) < amount {
		return schema.ErrInsufficientBalance
	}
	m.orders = append(m.orders, schema.SellOrder{
		OrderId:       uint64(len(m.orders)),
		PropertyId:    idx,
		Seller:        signer,
		TokenAmount:   amount,
		PricePerToken: cloneBig(pricePerToken),
		IsActive:      true,
	})
	return nil
}

func (m *MemLedger) CancelSellOrder(signer string, orderId uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if orderId >= uint64(len(m.orders)) {
		return schema.ErrNotFound
	}
	o := &m.orders[orderId]
	if !SameAccount(o.Seller, signer) {
		return schema.ErrNotOwner
	}
	if !o.IsActive {
		return schema.ErrAlreadyInactive
	}
	o.IsActive = false
	return nil
}

func (m *MemLedger) BuyFromSellOrder(signer string, orderId uint64, value *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if orderId >= uint64(len(m.orders)) {
		return schema.ErrNotFound
	}
	o := &m.orders[orderId]
	if !o.IsActive {
		return schema.ErrOrderInactive
	}
	if value == nil || o.TotalCost().Cmp(value) != 0 {
		return schema.ErrPaymentMismatch
	}
	if m.balances[o.PropertyId][o.Seller] < o.TokenAmount {
		return schema.ErrInsufficientBalance
	}
	m.balances[o.PropertyId][o.Seller] -= o.TokenAmount
	m.balances[o.PropertyId][signer] += o.TokenAmount
	o.IsActive = false
	return nil
}

func (m *MemLedger) RentProperty(signer string, idx uint64, value *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx >= uint64(len(m.properties)) {
		return schema.ErrNotFound
	}
	p := &m.properties[idx]
	if !p.IsRentable {
		return schema.ErrNotRentable
	}
	// the active flag doubles as "available for new rental" on chain
	if !p.IsActive {
		return schema.ErrAlreadyRented
	}
	if value == nil || p.MonthlyRent == nil || p.MonthlyRent.Cmp(value) != 0 {
		return schema.ErrPaymentMismatch
	}
	now := m.now().Unix()
	m.rentals = append(m.rentals, schema.RentalAgreement{
		RentalId:        uint64(len(m.rentals)),
		PropertyId:      idx,
		Tenant:          signer,
		StartDate:       now,
		EndDate:         m.now().Add(m.leaseTerm).Unix(),
		LastRentPayment: now,
		IsActive:        true,
	})
	p.IsActive = false
	return nil
}

func (m *MemLedger) PayRent(signer string, rentalId uint64, value *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rentalId >= uint64(len(m.rentals)) {
		return schema.ErrRentalNotFound
	}
	r := &m.rentals[rentalId]
	if !r.IsActive || !SameAccount(r.Tenant, signer) {
		return schema.ErrRentalNotFound
	}
	rent := m.properties[r.PropertyId].MonthlyRent
	if value == nil || rent == nil || rent.Cmp(value) != 0 {
		return schema.ErrUnderpayment
	}
	r.LastRentPayment = m.now().Unix()
	return nil
}

// ---- Governance reads ----

func (m *MemLedger) Properties() ([]schema.VoteProperty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schema.VoteProperty, len(m.voteProps))
	copy(out, m.voteProps)
	return out, nil
}

func (m *MemLedger) PropertyApplications(propertyId uint64) ([]schema.RentApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schema.RentApplication, 0)
	for _, a := range m.applications {
		if a.PropertyId == propertyId {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemLedger) CandidateVotes(applicationId uint64, candidate string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if applicationId >= uint64(len(m.applications)) {
		return 0, schema.ErrNotFound
	}
	return m.tally[applicationId][candidate], nil
}

func (m *MemLedger) HasVoted(applicationId uint64, holder string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if applicationId >= uint64(len(m.applications)) {
		return false, schema.ErrNotFound
	}
	return m.voted[applicationId][holder], nil
}

func (m *MemLedger) TokenOwnership(propertyId uint64, holder string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voteBalances[propertyId][holder], nil
}

// TokensOwned is the linked-path lookup: the governance ledger resolves the
// holder's balance on the mapped ownership-side property.
func (m *MemLedger) TokensOwned(propertyId uint64, holder string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.linked {
		return 0, schema.ErrQueryFailed
	}
	if propertyId >= uint64(len(m.voteProps)) {
		return 0, schema.ErrNotFound
	}
	mapped := m.voteProps[propertyId].MappedRealEstateId
	return m.balances[mapped][holder], nil
}

func (m *MemLedger) Linked() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.linked, nil
}

// ---- Governance writes ----

func (m *MemLedger) ApplyForRent(signer string, propertyId uint64, name, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if propertyId >= uint64(len(m.voteProps)) {
		return schema.ErrNotFound
	}
	if m.votingPowerLocked(propertyId, signer) > 0 {
		return schema.ErrIneligibleApplicant
	}
	m.applications = append(m.applications, schema.RentApplication{
		ApplicationId: uint64(len(m.applications)),
		PropertyId:    propertyId,
		Applicant:     signer,
		Name:          name,
		Description:   description,
		VotingEndTime: m.now().Add(m.votingPeriod).Unix(),
		IsActive:      true,
	})
	return nil
}

func (m *MemLedger) VoteForRent(signer string, applicationId uint64, candidate string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if applicationId >= uint64(len(m.applications)) {
		return schema.ErrNotFound
	}
	a := m.applications[applicationId]
	if !a.IsActive || m.now().Unix() >= a.VotingEndTime {
		return schema.ErrVotingClosed
	}
	if m.voted[applicationId][signer] {
		return schema.ErrAlreadyVoted
	}
	// weight is fixed at cast time; later balance changes do not alter it
	weight := m.votingPowerLocked(a.PropertyId, signer)
	if weight == 0 {
		return schema.ErrNoVotingPower
	}
	if m.voted[applicationId] == nil {
		m.voted[applicationId] = make(map[string]bool)
	}
	if m.tally[applicationId] == nil {
		m.tally[applicationId] = make(map[string]uint64)
	}
	m.voted[applicationId][signer] = true
	m.tally[applicationId][candidate] += weight
	return nil
}

func (m *MemLedger) FinalizeApplication(signer string, applicationId uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if applicationId >= uint64(len(m.applications)) {
		return schema.ErrNotFound
	}
	a := &m.applications[applicationId]
	if !a.IsActive {
		return schema.ErrAlreadyInactive
	}
	if m.now().Unix() < a.VotingEndTime {
		return schema.ErrVotingStillOpen
	}
	a.IsActive = false
	// simple majority of the property's token supply approves
	supply := m.voteProps[a.PropertyId].TotalTokens
	if m.tally[applicationId][a.Applicant]*2 > supply {
		a.IsApproved = true
		a.SelectedRenter = a.Applicant
	}
	return nil
}

func (m *MemLedger) LinkEstate(signer string, estateAddr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linked = true
	m.estateAddr = estateAddr
	return nil
}

// ---- internals, all called with the lock held ----

func (m *MemLedger) unlistedLocked(idx uint64, holder string) uint64 {
	bal := m.balances[idx][holder]
	for _, o := range m.orders {
		if o.IsActive && o.PropertyId == idx && SameAccount(o.Seller, holder) {
			bal -= o.TokenAmount
		}
	}
	return bal
}

func (m *MemLedger) votingPowerLocked(votePropId uint64, holder string) uint64 {
	// only a mapped property resolves through the ownership side
	if m.linked && votePropId < uint64(len(m.voteProps)) {
		if mapped := m.voteProps[votePropId].MappedRealEstateId; mapped > 0 {
			return m.balances[mapped][holder]
		}
	}
	return m.voteBalances[votePropId][holder]
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
