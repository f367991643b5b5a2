package brickfolio

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/brickfolio/brickfolio/common"
	"github.com/brickfolio/brickfolio/schema"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Brickfolio) runAPI(port string) {
	r := s.engine
	r.Use(common.CORSMiddleware())
	r.Use(common.LimiterMiddleware(600, "M", nil))
	v1 := r.Group("/")
	{
		v1.POST("/wallet/connect", s.connectWallet)
		v1.POST("/wallet/disconnect", s.disconnectWallet)
		v1.GET("/info", s.getInfo)

		v1.GET("/properties", s.getProperties)
		v1.GET("/property/:id", s.getProperty)
		v1.GET("/portfolio", s.getPortfolio)
		v1.POST("/purchase", s.purchaseTokens)
		v1.POST("/redeem", s.redeemTokens)

		v1.GET("/market/orders", s.getOrders)
		v1.GET("/market/mine", s.getMyOrders)
		v1.POST("/market/order", s.createOrder)
		v1.POST("/market/order/:id/cancel", s.cancelOrder)
		v1.POST("/market/order/:id/buy", s.fulfillOrder)

		v1.GET("/rentals", s.getRentals)
		v1.POST("/rent", s.rentProperty)
		v1.POST("/rental/:id/pay", s.payRent)

		v1.GET("/governance/properties", s.getVoteProperties)
		v1.GET("/governance/applications/:propertyId", s.getApplications)
		v1.POST("/governance/apply", s.applyForRent)
		v1.POST("/governance/vote", s.voteForRent)
		v1.POST("/governance/finalize/:id", s.finalizeApplication)
		v1.GET("/governance/tally/:id/:candidate", s.getTally)
		v1.GET("/governance/voted/:id", s.getVoted)
		v1.POST("/governance/link", s.linkLedgers)

		v1.GET("/activities", s.getActivities)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := r.Run(port); err != nil {
		panic(err)
	}
}

func errorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": err,
	})
}

func okResponse(c *gin.Context, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["ok"] = true
	c.JSON(http.StatusOK, data)
}

// submittedResponse reports a write that landed on the ledger whose new
// entity id could not be resolved. Distinct from both success-with-id and
// failure; the caller refreshes its lists instead of trusting an id.
func submittedResponse(c *gin.Context, err error) {
	c.JSON(http.StatusAccepted, gin.H{
		"submitted": true,
		"error":     err.Error(),
	})
}

func paramUint(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		errorResponse(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseBig(s string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	return v, ok
}

// record writes one activity row and counts the tx outcome.
func (s *Brickfolio) record(act schema.Activity, err error) {
	act.Success = err == nil
	if err != nil {
		act.Message = err.Error()
	}
	if account, aerr := s.session.Account(); aerr == nil {
		act.Account = account
	}
	metricTx(act.Kind, act.Success)
	s.wdb.RecordActivity(act)
}

// ---- wallet ----

func (s *Brickfolio) connectWallet(c *gin.Context) {
	req := struct {
		Account string `json:"account"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil || req.Account == "" {
		errorResponse(c, "account can not be null")
		return
	}
	s.session.Connect(req.Account)
	okResponse(c, nil)
}

func (s *Brickfolio) disconnectWallet(c *gin.Context) {
	s.session.Disconnect()
	okResponse(c, nil)
}

func (s *Brickfolio) getInfo(c *gin.Context) {
	account, _ := s.session.Account()
	linked, err := s.gov.Linked()
	if err != nil {
		linked = s.cfg.Linked()
	}
	c.JSON(http.StatusOK, gin.H{
		"account":   account,
		"connected": account != "",
		"linked":    linked,
	})
}

// ---- catalog & portfolio ----

func (s *Brickfolio) getProperties(c *gin.Context) {
	properties, err := s.catalog.LoadAll()
	if err != nil {
		if len(properties) > 0 {
			// stale but valid; surface both
			c.JSON(http.StatusOK, gin.H{"properties": properties, "stale": true, "error": err.Error()})
			return
		}
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

func (s *Brickfolio) getProperty(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	prop, err := s.catalog.GetByID(id)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, prop)
}

func (s *Brickfolio) getPortfolio(c *gin.Context) {
	entries, err := s.portfolio.LoadMine()
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"holdings": entries,
		"summary":  s.portfolio.Summary(entries),
	})
}

func (s *Brickfolio) purchaseTokens(c *gin.Context) {
	req := struct {
		PropertyId uint64 `json:"propertyId"`
		Amount     uint64 `json:"amount"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	err := s.market.PurchaseTokens(req.PropertyId, req.Amount)
	s.record(schema.Activity{Kind: schema.ActPurchase, PropertyId: req.PropertyId, Amount: req.Amount}, err)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	okResponse(c, nil)
}

func (s *Brickfolio) redeemTokens(c *gin.Context) {
	req := struct {
		PropertyId uint64 `json:"propertyId"`
		Amount     uint64 `json:"amount"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	err := s.market.RedeemTokens(req.PropertyId, req.Amount)
	s.record(schema.Activity{Kind: schema.ActRedeem, PropertyId: req.PropertyId, Amount: req.Amount}, err)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	okResponse(c, nil)
}

// ---- marketplace ----

func (s *Brickfolio) getOrders(c *gin.Context) {
	orders, err := s.market.ListActiveOrders()
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Brickfolio) getMyOrders(c *gin.Context) {
	orders, err := s.market.MyOrders()
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Brickfolio) createOrder(c *gin.Context) {
	req := struct {
		PropertyId    uint64 `json:"propertyId"`
		Amount        uint64 `json:"amount"`
		PricePerToken string `json:"pricePerToken"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	price, ok := parseBig(req.PricePerToken)
	if !ok {
		errorResponse(c, schema.ErrInvalidPrice.Error())
		return
	}
	orderId, err := s.market.CreateOrder(req.PropertyId, req.Amount, price)
	s.record(schema.Activity{Kind: schema.ActCreateOrder, PropertyId: req.PropertyId, RefId: orderId, Amount: req.Amount, Value: price.String()}, err)
	if errors.Is(err, schema.ErrIdUnresolved) {
		submittedResponse(c, err)
		return
	}
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	okResponse(c, gin.H{"orderId": orderId})
}

func (s *Brickfolio) cancelOrder(c *gin.Context) {
	orderId, ok := paramUint(c, "id")
	if !ok {
		return
	}
	err := s.market.CancelOrder(orderId)
	s.record(schema.Activity{Kind: schema.ActCancelOrder, RefId: orderId}, err)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	okResponse(c, nil)
}

func (s *Brickfolio) fulfillOrder(c *gin.Context) {
	orderId, ok := paramUint(c, "id")
	if !ok {
		return
	}
	req := struct {
		TotalCost string `json:"totalCost"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	totalCost, okCost := parseBig(req.TotalCost)
	if !okCost {
		errorResponse(c, "invalid totalCost")
		return
	}
	err := s.market.FulfillOrder(orderId, totalCost)
	s.record(schema.Activity{Kind: schema.ActBuyOrder, RefId: orderId, Value: totalCost.String()}, err)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"retryable": schema.Retryable(err),
		})
		return
	}
	okResponse(c, nil)
}

// ---- rental ----

func (s *Brickfolio) getRentals(c *gin.Context) {
	rentals, err := s.rental.TenantRentals()
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"rentals": rentals})
}

func (s *Brickfolio) rentProperty(c *gin.Context) {
	req := struct {
		PropertyId uint64 `json:"propertyId"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	rentalId, err := s.rental.Rent(req.PropertyId)
	s.record(schema.Activity{Kind: schema.ActRent, PropertyId: req.PropertyId, RefId: rentalId}, err)
	if errors.Is(err, schema.ErrIdUnresolved) {
		submittedResponse(c, err)
		return
	}
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	okResponse(c, gin.H{"rentalId": rentalId})
}

func (s *Brickfolio) payRent(c *gin.Context) {
	rentalId, ok := paramUint(c, "id")
	if !ok {
		return
	}
	err := s.rental.PayRent(rentalId)
	s.record(schema.Activity{Kind: schema.ActPayRent, RefId: rentalId}, err)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	okResponse(c, nil)
}

// ---- governance ----

func (s *Brickfolio) getVoteProperties(c *gin.Context) {
	props, err := s.governance.Properties()
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props})
}

func (s *Brickfolio) getApplications(c *gin.Context) {
	propertyId, ok := paramUint(c, "propertyId")
	if !ok {
		return
	}
	apps, err := s.governance.Applications(propertyId)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

func (s *Brickfolio) applyForRent(c *gin.Context) {
	req := struct {
		PropertyId  uint64 `json:"propertyId"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	appId, err := s.governance.Apply(req.PropertyId, req.Name, req.Description)
	s.record(schema.Activity{Kind: schema.ActApply, PropertyId: req.PropertyId, RefId: appId}, err)
	if errors.Is(err, schema.ErrIdUnresolved) {
		submittedResponse(c, err)
		return
	}
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	okResponse(c, gin.H{"applicationId": appId})
}

func (s *Brickfolio) voteForRent(c *gin.Context) {
	req := struct {
		ApplicationId uint64 `json:"applicationId"`
		Candidate     string `json:"candidate"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	err := s.governance.Vote(req.ApplicationId, req.Candidate)
	s.record(schema.Activity{Kind: schema.ActVote, RefId: req.ApplicationId}, err)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	okResponse(c, nil)
}

func (s *Brickfolio) finalizeApplication(c *gin.Context) {
	appId, ok := paramUint(c, "id")
	if !ok {
		return
	}
	err := s.governance.Finalize(appId)
	s.record(schema.Activity{Kind: schema.ActFinalize, RefId: appId}, err)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	okResponse(c, nil)
}

func (s *Brickfolio) getTally(c *gin.Context) {
	appId, ok := paramUint(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"votes": s.governance.TallyVotes(appId, c.Param("candidate")),
	})
}

func (s *Brickfolio) getVoted(c *gin.Context) {
	appId, ok := paramUint(c, "id")
	if !ok {
		return
	}
	voted, err := s.governance.HasVoted(appId)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"voted": voted})
}

func (s *Brickfolio) linkLedgers(c *gin.Context) {
	req := struct {
		EstateAddress string `json:"estateAddress"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil || req.EstateAddress == "" {
		errorResponse(c, "estateAddress can not be null")
		return
	}
	err := s.governance.LinkLedgers(req.EstateAddress)
	s.record(schema.Activity{Kind: schema.ActLink}, err)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	okResponse(c, nil)
}

// ---- activity ----

func (s *Brickfolio) getActivities(c *gin.Context) {
	account, err := s.session.Account()
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	acts, err := s.wdb.GetActivities(account, limit)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": acts})
}
