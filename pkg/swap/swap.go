package swap

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Asset identifies a single non-fungible token by its registry contract and
// token id.
type Asset struct {
	Contract common.Address
	TokenID  *big.Int
}

func NewAsset(contract common.Address, tokenID *big.Int) Asset {
	return Asset{Contract: contract, TokenID: tokenID}
}

// Key returns a canonical identifier used to detect the same asset appearing
// twice in a leg list.
func (a Asset) Key() string {
	return fmt.Sprintf("%s:%s", strings.ToLower(a.Contract.Hex()), a.TokenID.String())
}

func (a Asset) String() string {
	return a.Key()
}

// Role tags which of the two parties a leg belongs to.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleInitiator
	RoleCounterparty
)

func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleCounterparty:
		return "counterparty"
	default:
		return "unknown"
	}
}

type Status uint8

const (
	Unknown Status = iota
	Active
	Executed
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Executed:
		return "executed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Leg is one asset slot of a swap, together with the party recorded as its
// owner at proposal time. The swap never owns the asset, the leg only
// snapshots who was expected to own it when the proposal was made.
type Leg struct {
	Asset Asset
	Owner common.Address
	Role  Role
}

// Swap is a two-party proposal to exchange the initiator's assets for the
// counterparty's assets in a single all-or-nothing operation. Terms are
// immutable after creation, only Status and ClosedAt change.
type Swap struct {
	ID           uint64
	Initiator    common.Address
	Counterparty common.Address
	Legs         []Leg
	ExpiresAt    *time.Time // nil means the swap never expires
	Status       Status
	CreatedAt    time.Time
	ClosedAt     *time.Time
}

// Expired reports whether the execution deadline has passed. A swap with no
// deadline never expires. The boundary is inclusive: a swap is still
// executable at exactly ExpiresAt.
func (s Swap) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// Destination returns where a leg's asset moves on execution, which is
// always the party that does not currently hold it.
func (s Swap) Destination(leg Leg) common.Address {
	if leg.Role == RoleInitiator {
		return s.Counterparty
	}
	return s.Initiator
}

// Validate checks the structural invariants that must hold for every stored
// swap. Ownership is a creation-time snapshot and is deliberately not part
// of this check.
func (s Swap) Validate() error {
	if len(s.Legs) < 2 {
		return ErrTooFewLegs
	}
	if s.Counterparty == (common.Address{}) {
		return ErrNilCounterparty
	}
	if s.Initiator == s.Counterparty {
		return ErrSelfSwap
	}
	seen := make(map[string]int, len(s.Legs))
	for i, leg := range s.Legs {
		if leg.Asset.TokenID == nil {
			return NewLegError(i, leg.Asset, fmt.Errorf("missing token id"))
		}
		if j, ok := seen[leg.Asset.Key()]; ok {
			return NewLegError(i, leg.Asset, fmt.Errorf("%w, first seen at leg %d", ErrDuplicateAsset, j))
		}
		seen[leg.Asset.Key()] = i

		switch leg.Role {
		case RoleInitiator:
			if leg.Owner != s.Initiator {
				return NewLegError(i, leg.Asset, fmt.Errorf("initiator leg owned by %s", leg.Owner.Hex()))
			}
		case RoleCounterparty:
			if leg.Owner != s.Counterparty {
				return NewLegError(i, leg.Asset, fmt.Errorf("counterparty leg owned by %s", leg.Owner.Hex()))
			}
		default:
			return NewLegError(i, leg.Asset, fmt.Errorf("leg has no role"))
		}
	}
	return nil
}
