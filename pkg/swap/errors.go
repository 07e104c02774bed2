package swap

import (
	"errors"
	"fmt"
)

// Proposal validation failures, one per structural check. Each aborts
// creation with no record written.
var (
	ErrTooFewLegs      = errors.New("swap requires at least two legs")
	ErrNilCounterparty = errors.New("counterparty is the zero address")
	ErrSelfSwap        = errors.New("counterparty must differ from the initiator")
	ErrSplitIndex      = errors.New("split index out of range")
	ErrDuplicateAsset  = errors.New("duplicate asset in leg list")

	// ErrOwnershipMismatch means a leg's claimed owner did not match the
	// custody service at proposal time, a stale or false proposal.
	ErrOwnershipMismatch = errors.New("recorded owner does not match custody")
)

// Lifecycle failures surfaced by the execution engine.
var (
	ErrUnauthorized    = errors.New("caller is not authorized for this operation")
	ErrExpired         = errors.New("swap deadline has passed")
	ErrApprovalMissing = errors.New("owner has not granted transfer approval")
	ErrSwapClosed      = errors.New("swap is no longer active")
	ErrSwapNotFound    = errors.New("swap not found")
)

// LegError attaches the offending leg index to a validation or execution
// failure so callers can tell which asset tripped the check.
type LegError struct {
	Index int
	Asset Asset
	Err   error
}

func NewLegError(index int, asset Asset, err error) *LegError {
	return &LegError{Index: index, Asset: asset, Err: err}
}

func (e *LegError) Error() string {
	return fmt.Sprintf("leg %d (%s): %v", e.Index, e.Asset, e.Err)
}

func (e *LegError) Unwrap() error {
	return e.Err
}
