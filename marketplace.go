package brickfolio

import (
	"math/big"

	"github.com/brickfolio/brickfolio/ledger"
	"github.com/brickfolio/brickfolio/schema"
)

// Marketplace coordinates the peer-to-peer resale order book. All cost
// arithmetic stays in ledger-native integer units; only presentation
// rounds.
type Marketplace struct {
	estate  ledger.Estate
	catalog *Catalog
	session *ledger.Session
	// fired after a successful mutation; wired to catalog+ownership
	// invalidation, not a full cache sweep
	onMutate func()
}

func NewMarketplace(estate ledger.Estate, catalog *Catalog, session *ledger.Session, onMutate func()) *Marketplace {
	if onMutate == nil {
		onMutate = func() {}
	}
	return &Marketplace{
		estate:   estate,
		catalog:  catalog,
		session:  session,
		onMutate: onMutate,
	}
}

// PurchaseTokens buys amount tokens on the primary market. The attached
// value is computed from a fresh property read, never a cached price.
func (m *Marketplace) PurchaseTokens(propertyId, amount uint64) error {
	account, err := m.session.Account()
	if err != nil {
		return err
	}
	if amount == 0 {
		return schema.ErrInvalidAmount
	}
	prop, err := m.estate.PropertyDetails(propertyId)
	if err != nil || prop.IsHole() {
		return schema.ErrNotFound
	}
	cost := new(big.Int).Mul(prop.PricePerToken, new(big.Int).SetUint64(amount))
	if err := m.estate.PurchaseTokens(account, propertyId, amount, cost); err != nil {
		return err
	}
	m.onMutate()
	return nil
}

// RedeemTokens sells tokens back to the property pool (direct redemption,
// not a marketplace order).
func (m *Marketplace) RedeemTokens(propertyId, amount uint64) error {
	account, err := m.session.Account()
	if err != nil {
		return err
	}
	if amount == 0 {
		return schema.ErrInvalidAmount
	}
	if err := m.estate.RedeemTokens(account, propertyId, amount); err != nil {
		return err
	}
	m.onMutate()
	return nil
}

// CreateOrder lists tokens for resale and returns the new order id. The
// unlisted-balance check is ledger-enforced; price validation is local.
func (m *Marketplace) CreateOrder(propertyId, amount uint64, pricePerToken *big.Int) (uint64, error) {
	account, err := m.session.Account()
	if err != nil {
		return 0, err
	}
	if pricePerToken == nil || pricePerToken.Sign() <= 0 {
		return 0, schema.ErrInvalidPrice
	}
	if amount == 0 {
		return 0, schema.ErrInvalidAmount
	}
	if err := m.estate.CreateSellOrder(account, propertyId, amount, pricePerToken); err != nil {
		return 0, err
	}
	m.onMutate()

	// the ledger does not return the id; reconcile from the seller's book.
	// Ids are dense from 0, so a failed reconciliation must surface as
	// ErrIdUnresolved rather than default to 0, a valid id.
	orders, err := m.estate.SellOrdersBySeller(account)
	if err != nil {
		log.Warn("order created but id reconciliation failed", "err", err)
		return 0, schema.ErrIdUnresolved
	}
	var orderId uint64
	found := false
	for _, o := range orders {
		if o.IsActive && o.PropertyId == propertyId && o.TokenAmount == amount &&
			o.PricePerToken.Cmp(pricePerToken) == 0 && (!found || o.OrderId > orderId) {
			orderId = o.OrderId
			found = true
		}
	}
	if !found {
		log.Warn("order created but not present in the seller's book", "propertyId", propertyId)
		return 0, schema.ErrIdUnresolved
	}
	return orderId, nil
}

// CancelOrder withdraws an active order owned by the caller.
func (m *Marketplace) CancelOrder(orderId uint64) error {
	account, err := m.session.Account()
	if err != nil {
		return err
	}
	order, err := m.findOrder(orderId)
	if err != nil {
		return err
	}
	if !ledger.SameAccount(order.Seller, account) {
		return schema.ErrNotOwner
	}
	if !order.IsActive {
		return schema.ErrAlreadyInactive
	}
	if err := m.estate.CancelSellOrder(account, orderId); err != nil {
		return err
	}
	m.onMutate()
	return nil
}

// FulfillOrder buys out an order. totalCost must equal
// pricePerToken×tokenAmount exactly; the ledger rejects any mismatch.
// Self-purchase is rejected here, before submission, as a wasted
// transaction. An order filled or cancelled between discovery and this
// call surfaces as ErrOrderInactive, a normal retryable race.
func (m *Marketplace) FulfillOrder(orderId uint64, totalCost *big.Int) error {
	account, err := m.session.Account()
	if err != nil {
		return err
	}
	order, err := m.findOrder(orderId)
	if err != nil {
		return err
	}
	if !order.IsActive {
		return schema.ErrOrderInactive
	}
	if ledger.SameAccount(order.Seller, account) {
		return schema.ErrSelfPurchase
	}
	if err := m.estate.BuyFromSellOrder(account, orderId, totalCost); err != nil {
		return err
	}
	m.onMutate()
	return nil
}

// ListActiveOrders joins every active order to its property. An order
// whose property lookup fails is dropped with a warning; one bad join must
// not hide the book.
func (m *Marketplace) ListActiveOrders() ([]schema.OrderDetail, error) {
	orders, err := m.estate.AllSellOrders()
	if err != nil {
		return nil, err
	}
	return m.join(orders, true), nil
}

// MyOrders returns the caller's orders, active and filled, joined to their
// properties.
func (m *Marketplace) MyOrders() ([]schema.OrderDetail, error) {
	account, err := m.session.Account()
	if err != nil {
		return nil, err
	}
	orders, err := m.estate.SellOrdersBySeller(account)
	if err != nil {
		return nil, err
	}
	return m.join(orders, false), nil
}

func (m *Marketplace) join(orders []schema.SellOrder, activeOnly bool) []schema.OrderDetail {
	details := make([]schema.OrderDetail, 0, len(orders))
	for _, o := range orders {
		if activeOnly && !o.IsActive {
			continue
		}
		prop, err := m.catalog.GetByID(o.PropertyId)
		if err != nil {
			log.Warn("dropping order with unresolvable property", "orderId", o.OrderId, "propertyId", o.PropertyId, "err", err)
			continue
		}
		details = append(details, schema.OrderDetail{SellOrder: o, Property: prop})
	}
	return details
}

func (m *Marketplace) findOrder(orderId uint64) (schema.SellOrder, error) {
	orders, err := m.estate.AllSellOrders()
	if err != nil {
		return schema.SellOrder{}, err
	}
	for _, o := range orders {
		if o.OrderId == orderId {
			return o, nil
		}
	}
	return schema.SellOrder{}, schema.ErrNotFound
}
