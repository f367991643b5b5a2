package brickfolio

import (
	"time"

	"github.com/brickfolio/brickfolio/ledger"
	"github.com/brickfolio/brickfolio/schema"
)

// Rental manages the tenancy lifecycle: renting an available property,
// recurring payment, and the due-date policy.
type Rental struct {
	estate   ledger.Estate
	catalog  *Catalog
	session  *ledger.Session
	onMutate func()
	now      func() time.Time
}

func NewRental(estate ledger.Estate, catalog *Catalog, session *ledger.Session, onMutate func()) *Rental {
	if onMutate == nil {
		onMutate = func() {}
	}
	return &Rental{
		estate:   estate,
		catalog:  catalog,
		session:  session,
		onMutate: onMutate,
		now:      time.Now,
	}
}

// Rent takes a tenancy on an available, rentable property and returns the
// new rental id. The monthly rent is read fresh from the ledger at call
// time; paying a cached amount would underpay if rent was changed.
func (r *Rental) Rent(propertyId uint64) (uint64, error) {
	account, err := r.session.Account()
	if err != nil {
		return 0, err
	}
	rentable, monthlyRent, err := r.estate.PropertyRentalInfo(propertyId)
	if err != nil {
		return 0, err
	}
	if !rentable {
		return 0, schema.ErrNotRentable
	}
	prop, err := r.estate.PropertyDetails(propertyId)
	if err != nil || prop.IsHole() {
		return 0, schema.ErrNotFound
	}
	// the ledger repurposes the active flag as "available for new rental"
	if !prop.IsActive {
		return 0, schema.ErrAlreadyRented
	}
	if err := r.estate.RentProperty(account, propertyId, monthlyRent); err != nil {
		return 0, err
	}
	r.onMutate()

	// reconciliation must not default to 0, a valid rental id
	rentals, err := r.estate.TenantRentals(account)
	if err != nil {
		log.Warn("rented but id reconciliation failed", "err", err)
		return 0, schema.ErrIdUnresolved
	}
	var rentalId uint64
	found := false
	for _, agreement := range rentals {
		if agreement.IsActive && agreement.PropertyId == propertyId && (!found || agreement.RentalId > rentalId) {
			rentalId = agreement.RentalId
			found = true
		}
	}
	if !found {
		log.Warn("rented but no active agreement found", "propertyId", propertyId)
		return 0, schema.ErrIdUnresolved
	}
	return rentalId, nil
}

// PayRent pays one period of rent on the caller's active rental. The
// amount must match the current monthly rent exactly; the ledger accepts
// no partial or overpayment.
func (r *Rental) PayRent(rentalId uint64) error {
	account, err := r.session.Account()
	if err != nil {
		return err
	}
	rentals, err := r.estate.TenantRentals(account)
	if err != nil {
		return err
	}
	var rental *schema.RentalAgreement
	for i := range rentals {
		if rentals[i].RentalId == rentalId && rentals[i].IsActive {
			rental = &rentals[i]
			break
		}
	}
	if rental == nil {
		return schema.ErrRentalNotFound
	}
	_, monthlyRent, err := r.estate.PropertyRentalInfo(rental.PropertyId)
	if err != nil {
		return err
	}
	if err := r.estate.PayRent(account, rentalId, monthlyRent); err != nil {
		return err
	}
	r.onMutate()
	return nil
}

// IsRentDue applies the rent cadence policy: due once a full 30-day window
// has elapsed since the last payment. Fixed windows, not calendar months;
// computed here from the ledger timestamp, never stored.
func (r *Rental) IsRentDue(rental schema.RentalAgreement) bool {
	last := time.Unix(rental.LastRentPayment, 0)
	return r.now().Sub(last) >= schema.RentPeriod
}

// TenantRentals returns the caller's active rentals joined to property
// details, with due-ness computed.
func (r *Rental) TenantRentals() ([]schema.RentalDetail, error) {
	account, err := r.session.Account()
	if err != nil {
		return nil, err
	}
	rentals, err := r.estate.TenantRentals(account)
	if err != nil {
		return nil, err
	}
	details := make([]schema.RentalDetail, 0, len(rentals))
	for _, agreement := range rentals {
		if !agreement.IsActive {
			continue
		}
		prop, err := r.catalog.GetByID(agreement.PropertyId)
		if err != nil {
			log.Warn("dropping rental with unresolvable property", "rentalId", agreement.RentalId, "err", err)
			continue
		}
		details = append(details, schema.RentalDetail{
			RentalAgreement: agreement,
			Property:        prop,
			RentDue:         r.IsRentDue(agreement),
		})
	}
	return details, nil
}

// Occupied reports whether a rentable property currently has a tenant.
// Derived view; callers should stop reading IsActive for occupancy.
func (r *Rental) Occupied(prop schema.Property) bool {
	return prop.IsRentable && !prop.IsActive
}
