package schema

import (
	"errors"
)

var (
	ErrNotConnected = errors.New("wallet_not_connected")
	ErrNotFound     = errors.New("not_found")

	// validation family; local and terminal for the call, never retried
	ErrInsufficientBalance  = errors.New("insufficient_balance")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrPaymentMismatch      = errors.New("payment_mismatch")
	ErrSelfPurchase         = errors.New("self_purchase")
	ErrNotOwner             = errors.New("not_order_owner")
	ErrAlreadyInactive      = errors.New("already_inactive")
	ErrOrderInactive        = errors.New("order_inactive")
	ErrNotRentable          = errors.New("not_rentable")
	ErrAlreadyRented        = errors.New("already_rented")
	ErrRentalNotFound       = errors.New("rental_not_found")
	ErrUnderpayment         = errors.New("underpayment")
	ErrIneligibleApplicant  = errors.New("ineligible_applicant")
	ErrDuplicateApplication = errors.New("duplicate_application")
	ErrAlreadyVoted         = errors.New("already_voted")
	ErrNoVotingPower        = errors.New("no_voting_power")
	ErrVotingStillOpen      = errors.New("voting_still_open")
	ErrVotingClosed         = errors.New("voting_closed")

	ErrQueryFailed       = errors.New("ledger_query_failed")
	ErrTransactionFailed = errors.New("transaction_failed")
	ErrSignerMismatch    = errors.New("signer_mismatch")

	// the write landed but the follow-up read that resolves the new
	// entity's id failed; the id return value is meaningless
	ErrIdUnresolved = errors.New("submitted_id_unresolved")
)

// Retryable reports whether an error is a normal race outcome the caller
// may simply retry after a refresh, e.g. an order filled between discovery
// and fulfillment.
func Retryable(err error) bool {
	return errors.Is(err, ErrOrderInactive)
}
