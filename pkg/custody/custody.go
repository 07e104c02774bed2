// Package custody defines the external system of record for asset
// ownership, approvals and transfers. The swap protocol never tracks
// ownership itself, it snapshots and instructs through this interface.
package custody

import (
	"context"

	"github.com/catalogfi/barter/pkg/swap"
	"github.com/ethereum/go-ethereum/common"
)

type Service interface {
	// OwnerOf returns the current true owner of the asset.
	OwnerOf(ctx context.Context, asset swap.Asset) (common.Address, error)

	// Approved returns the single address approved to move the asset, or
	// the zero address when none is set.
	Approved(ctx context.Context, asset swap.Asset) (common.Address, error)

	// ApprovedForAll reports whether operator holds a blanket approval
	// over all of owner's assets on the given contract.
	ApprovedForAll(ctx context.Context, contract, owner, operator common.Address) (bool, error)

	// Transfer moves the asset from its owner to the destination. The
	// custody service must revert with no side effects if from is not the
	// true owner or the operator lacks approval; the engine relies on
	// that instead of re-verifying ownership before each transfer.
	Transfer(ctx context.Context, asset swap.Asset, from, to common.Address) error

	// Operator is the address transfer instructions are issued from, the
	// one owners must approve.
	Operator() common.Address
}
