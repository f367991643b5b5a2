package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/brickfolio/brickfolio/schema"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/inconshreveable/log15"
)

var log = log15.New("module", "ledger")

// EthLedger speaks to the deployed RealEstate and Vote contracts over an
// EVM JSON-RPC endpoint. Writes are signed with the key loaded at
// construction; the session account must match it. There is no timeout or
// cancellation contract on calls: a call is awaited to completion or to
// failure.
type EthLedger struct {
	client   *ethclient.Client
	estate   *bind.BoundContract
	vote     *bind.BoundContract
	voteAddr common.Address
	chainID  *big.Int
	key      *ecdsa.PrivateKey
	from     common.Address
}

func NewEthLedger(rpcURL, estateAddr, voteAddr, keyPath string) (*EthLedger, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, err
	}
	chainID, err := client.ChainID(context.Background())
	if err != nil {
		return nil, err
	}
	key, err := crypto.LoadECDSA(keyPath)
	if err != nil {
		return nil, err
	}
	estateParsed, err := abi.JSON(strings.NewReader(estateABI))
	if err != nil {
		return nil, err
	}
	voteParsed, err := abi.JSON(strings.NewReader(voteABI))
	if err != nil {
		return nil, err
	}
	l := &EthLedger{
		client:   client,
		estate:   bind.NewBoundContract(common.HexToAddress(estateAddr), estateParsed, client, client, client),
		vote:     bind.NewBoundContract(common.HexToAddress(voteAddr), voteParsed, client, client, client),
		voteAddr: common.HexToAddress(voteAddr),
		chainID:  chainID,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
	}
	log.Info("ledger client ready", "chainId", chainID.String(), "account", l.from.Hex(), "estate", estateAddr, "vote", l.voteAddr.Hex())
	return l, nil
}

// SignerAddress is the account writes are signed with.
func (l *EthLedger) SignerAddress() string {
	return l.from.Hex()
}

// raw tuple shapes as the ABI decoder produces them

type rawProperty struct {
	Name                string
	Location            string
	Description         string
	ImageURI            string
	TotalCost           *big.Int
	TotalNumberOfTokens *big.Int
	PricePerToken       *big.Int
	IsActive            bool
	IsRentable          bool
	MonthlyRent         *big.Int
}

type rawOrder struct {
	OrderId       *big.Int
	PropertyId    *big.Int
	Seller        common.Address
	TokenAmount   *big.Int
	PricePerToken *big.Int
	IsActive      bool
}

type rawRental struct {
	RentalId        *big.Int
	PropertyId      *big.Int
	Tenant          common.Address
	StartDate       *big.Int
	EndDate         *big.Int
	LastRentPayment *big.Int
	IsActive        bool
}

type rawVoteProperty struct {
	PropertyId         *big.Int
	Name               string
	Location           string
	TotalTokens        *big.Int
	IsActive           bool
	IsRentable         bool
	MonthlyRent        *big.Int
	MappedRealEstateId *big.Int
}

type rawApplication struct {
	ApplicationId  *big.Int
	PropertyId     *big.Int
	Applicant      common.Address
	Name           string
	Description    string
	VotingEndTime  *big.Int
	IsActive       bool
	IsApproved     bool
	SelectedRenter common.Address
}

// ---- Estate reads ----

func (l *EthLedger) PropertiesCount() (uint64, error) {
	var out []interface{}
	if err := l.estate.Call(nil, &out, "getAllPropertiesCount"); err != nil {
		return 0, queryErr("getAllPropertiesCount", err)
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Uint64(), nil
}

func (l *EthLedger) PropertyDetails(idx uint64) (schema.Property, error) {
	var out []interface{}
	if err := l.estate.Call(nil, &out, "getPropertyDetails", new(big.Int).SetUint64(idx)); err != nil {
		return schema.Property{}, queryErr("getPropertyDetails", err)
	}
	raw := *abi.ConvertType(out[0], new(rawProperty)).(*rawProperty)
	return schema.Property{
		PropertyId:          idx,
		Name:                raw.Name,
		Location:            raw.Location,
		Description:         raw.Description,
		ImageURI:            raw.ImageURI,
		TotalCost:           raw.TotalCost,
		TotalNumberOfTokens: raw.TotalNumberOfTokens.Uint64(),
		PricePerToken:       raw.PricePerToken,
		IsActive:            raw.IsActive,
		IsRentable:          raw.IsRentable,
		MonthlyRent:         raw.MonthlyRent,
	}, nil
}

func (l *EthLedger) TokenBalance(idx uint64, holder string) (uint64, error) {
	var out []interface{}
	if err := l.estate.Call(nil, &out, "tokenOwnership", new(big.Int).SetUint64(idx), common.HexToAddress(holder)); err != nil {
		return 0, queryErr("tokenOwnership", err)
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Uint64(), nil
}

func (l *EthLedger) PropertyRentalInfo(idx uint64) (bool, *big.Int, error) {
	var out []interface{}
	if err := l.estate.Call(nil, &out, "getPropertyRentalInfo", new(big.Int).SetUint64(idx)); err != nil {
		return false, nil, queryErr("getPropertyRentalInfo", err)
	}
	rentable := *abi.ConvertType(out[0], new(bool)).(*bool)
	rent := *abi.ConvertType(out[1], new(*big.Int)).(**big.Int)
	return rentable, rent, nil
}

func (l *EthLedger) AllSellOrders() ([]schema.SellOrder, error) {
	var out []interface{}
	if err := l.estate.Call(nil, &out, "getAllSellOrders"); err != nil {
		return nil, queryErr("getAllSellOrders", err)
	}
	return convOrders(*abi.ConvertType(out[0], new([]rawOrder)).(*[]rawOrder)), nil
}

func (l *EthLedger) SellOrdersBySeller(seller string) ([]schema.SellOrder, error) {
	// getMySellOrders filters by msg.sender, so the seller rides in as the
	// eth_call from address
	opts := &bind.CallOpts{From: common.HexToAddress(seller)}
	var out []interface{}
	if err := l.estate.Call(opts, &out, "getMySellOrders"); err != nil {
		return nil, queryErr("getMySellOrders", err)
	}
	return convOrders(*abi.ConvertType(out[0], new([]rawOrder)).(*[]rawOrder)), nil
}

func (l *EthLedger) TenantRentals(tenant string) ([]schema.RentalAgreement, error) {
	var out []interface{}
	if err := l.estate.Call(nil, &out, "getTenantRentals", common.HexToAddress(tenant)); err != nil {
		return nil, queryErr("getTenantRentals", err)
	}
	raws := *abi.ConvertType(out[0], new([]rawRental)).(*[]rawRental)
	rentals := make([]schema.RentalAgreement, 0, len(raws))
	for _, r := range raws {
		rentals = append(rentals, schema.RentalAgreement{
			RentalId:        r.RentalId.Uint64(),
			PropertyId:      r.PropertyId.Uint64(),
			Tenant:          r.Tenant.Hex(),
			StartDate:       r.StartDate.Int64(),
			EndDate:         r.EndDate.Int64(),
			LastRentPayment: r.LastRentPayment.Int64(),
			IsActive:        r.IsActive,
		})
	}
	return rentals, nil
}

// ---- Estate writes ----

func (l *EthLedger) PurchaseTokens(signer string, idx, amount uint64, value *big.Int) error {
	return l.transact(l.estate, signer, value, "purchasePropertyTokens",
		new(big.Int).SetUint64(idx), new(big.Int).SetUint64(amount))
}

func (l *EthLedger) RedeemTokens(signer string, idx, amount uint64) error {
	return l.transact(l.estate, signer, nil, "sellPropertyTokens",
		new(big.Int).SetUint64(idx), new(big.Int).SetUint64(amount))
}

func (l *EthLedger) CreateSellOrder(signer string, idx, amount uint64, pricePerToken *big.Int) error {
	return l.transact(l.estate, signer, nil, "createSellOrder",
		new(big.Int).SetUint64(idx), new(big.Int).SetUint64(amount), pricePerToken)
}

func (l *EthLedger) CancelSellOrder(signer string, orderId uint64) error {
	return l.transact(l.estate, signer, nil, "cancelSellOrder", new(big.Int).SetUint64(orderId))
}

func (l *EthLedger) BuyFromSellOrder(signer string, orderId uint64, value *big.Int) error {
	return l.transact(l.estate, signer, value, "buyFromSellOrder", new(big.Int).SetUint64(orderId))
}

func (l *EthLedger) RentProperty(signer string, idx uint64, value *big.Int) error {
	return l.transact(l.estate, signer, value, "rentProperty", new(big.Int).SetUint64(idx))
}

func (l *EthLedger) PayRent(signer string, rentalId uint64, value *big.Int) error {
	return l.transact(l.estate, signer, value, "payRent", new(big.Int).SetUint64(rentalId))
}

// ---- Governance reads ----

func (l *EthLedger) Properties() ([]schema.VoteProperty, error) {
	var out []interface{}
	if err := l.vote.Call(nil, &out, "getAllProperties"); err != nil {
		return nil, queryErr("getAllProperties", err)
	}
	raws := *abi.ConvertType(out[0], new([]rawVoteProperty)).(*[]rawVoteProperty)
	props := make([]schema.VoteProperty, 0, len(raws))
	for _, p := range raws {
		props = append(props, schema.VoteProperty{
			PropertyId:         p.PropertyId.Uint64(),
			Name:               p.Name,
			Location:           p.Location,
			TotalTokens:        p.TotalTokens.Uint64(),
			IsActive:           p.IsActive,
			IsRentable:         p.IsRentable,
			MonthlyRent:        p.MonthlyRent,
			MappedRealEstateId: p.MappedRealEstateId.Uint64(),
		})
	}
	return props, nil
}

func (l *EthLedger) PropertyApplications(propertyId uint64) ([]schema.RentApplication, error) {
	var out []interface{}
	if err := l.vote.Call(nil, &out, "getPropertyApplications", new(big.Int).SetUint64(propertyId)); err != nil {
		return nil, queryErr("getPropertyApplications", err)
	}
	raws := *abi.ConvertType(out[0], new([]rawApplication)).(*[]rawApplication)
	apps := make([]schema.RentApplication, 0, len(raws))
	for _, a := range raws {
		apps = append(apps, schema.RentApplication{
			ApplicationId:  a.ApplicationId.Uint64(),
			PropertyId:     a.PropertyId.Uint64(),
			Applicant:      a.Applicant.Hex(),
			Name:           a.Name,
			Description:    a.Description,
			VotingEndTime:  a.VotingEndTime.Int64(),
			IsActive:       a.IsActive,
			IsApproved:     a.IsApproved,
			SelectedRenter: a.SelectedRenter.Hex(),
		})
	}
	return apps, nil
}

func (l *EthLedger) CandidateVotes(applicationId uint64, candidate string) (uint64, error) {
	var out []interface{}
	if err := l.vote.Call(nil, &out, "getCandidateVotes", new(big.Int).SetUint64(applicationId), common.HexToAddress(candidate)); err != nil {
		return 0, queryErr("getCandidateVotes", err)
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Uint64(), nil
}

func (l *EthLedger) HasVoted(applicationId uint64, holder string) (bool, error) {
	var out []interface{}
	if err := l.vote.Call(nil, &out, "hasTokenHolderVoted", new(big.Int).SetUint64(applicationId), common.HexToAddress(holder)); err != nil {
		return false, queryErr("hasTokenHolderVoted", err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (l *EthLedger) TokenOwnership(propertyId uint64, holder string) (uint64, error) {
	var out []interface{}
	if err := l.vote.Call(nil, &out, "tokenOwnership", new(big.Int).SetUint64(propertyId), common.HexToAddress(holder)); err != nil {
		return 0, queryErr("tokenOwnership", err)
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Uint64(), nil
}

func (l *EthLedger) TokensOwned(propertyId uint64, holder string) (uint64, error) {
	var out []interface{}
	if err := l.vote.Call(nil, &out, "getTokensOwned", new(big.Int).SetUint64(propertyId), common.HexToAddress(holder)); err != nil {
		return 0, queryErr("getTokensOwned", err)
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Uint64(), nil
}

func (l *EthLedger) Linked() (bool, error) {
	var out []interface{}
	if err := l.vote.Call(nil, &out, "useRealEstateContract"); err != nil {
		return false, queryErr("useRealEstateContract", err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// ---- Governance writes ----

func (l *EthLedger) ApplyForRent(signer string, propertyId uint64, name, description string) error {
	return l.transact(l.vote, signer, nil, "applyForRent", new(big.Int).SetUint64(propertyId), name, description)
}

func (l *EthLedger) VoteForRent(signer string, applicationId uint64, candidate string) error {
	return l.transact(l.vote, signer, nil, "voteForRent", new(big.Int).SetUint64(applicationId), common.HexToAddress(candidate))
}

func (l *EthLedger) FinalizeApplication(signer string, applicationId uint64) error {
	return l.transact(l.vote, signer, nil, "finalizeApplication", new(big.Int).SetUint64(applicationId))
}

func (l *EthLedger) LinkEstate(signer string, estateAddr string) error {
	return l.transact(l.vote, signer, nil, "setRealEstateContract", common.HexToAddress(estateAddr))
}

// ---- plumbing ----

func (l *EthLedger) transact(contract *bind.BoundContract, signer string, value *big.Int, method string, params ...interface{}) error {
	if !SameAccount(signer, l.from.Hex()) {
		return schema.ErrSignerMismatch
	}
	opts, err := bind.NewKeyedTransactorWithChainID(l.key, l.chainID)
	if err != nil {
		return fmt.Errorf("%w: %v", schema.ErrTransactionFailed, err)
	}
	opts.Value = value
	tx, err := contract.Transact(opts, method, params...)
	if err != nil {
		if reason := revertReason(err); reason != "" {
			return fmt.Errorf("%w: %s", schema.ErrTransactionFailed, reason)
		}
		return fmt.Errorf("%w: %v", schema.ErrTransactionFailed, err)
	}
	receipt, err := bind.WaitMined(context.Background(), l.client, tx)
	if err != nil {
		return fmt.Errorf("%w: %v", schema.ErrTransactionFailed, err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		if reason := l.replayForReason(tx, receipt); reason != "" {
			return fmt.Errorf("%w: %s", schema.ErrTransactionFailed, reason)
		}
		return fmt.Errorf("%w: reverted (tx %s)", schema.ErrTransactionFailed, tx.Hash().Hex())
	}
	log.Debug("tx mined", "method", method, "tx", tx.Hash().Hex(), "gasUsed", receipt.GasUsed)
	return nil
}

// replayForReason re-executes a reverted tx as a call at its block to
// recover the ledger-supplied reason, if any.
func (l *EthLedger) replayForReason(tx *types.Transaction, receipt *types.Receipt) string {
	msg := ethereum.CallMsg{
		From:  l.from,
		To:    tx.To(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err := l.client.CallContract(context.Background(), msg, receipt.BlockNumber)
	return revertReason(err)
}

// revertReason digs the Error(string) payload out of an RPC error, when the
// node attached one.
func revertReason(err error) string {
	if err == nil {
		return ""
	}
	var de interface{ ErrorData() interface{} }
	if !errors.As(err, &de) {
		return ""
	}
	hexData, ok := de.ErrorData().(string)
	if !ok {
		return ""
	}
	data := common.FromHex(hexData)
	reason, uerr := abi.UnpackRevert(data)
	if uerr != nil {
		return ""
	}
	return reason
}

func queryErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", schema.ErrQueryFailed, op, err)
}

func convOrders(raws []rawOrder) []schema.SellOrder {
	orders := make([]schema.SellOrder, 0, len(raws))
	for _, o := range raws {
		orders = append(orders, schema.SellOrder{
			OrderId:       o.OrderId.Uint64(),
			PropertyId:    o.PropertyId.Uint64(),
			Seller:        o.Seller.Hex(),
			TokenAmount:   o.TokenAmount.Uint64(),
			PricePerToken: o.PricePerToken,
			IsActive:      o.IsActive,
		})
	}
	return orders
}
