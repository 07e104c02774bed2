// Package mock provides in-memory collaborators for the test suites.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/catalogfi/barter/pkg/custody"
	"github.com/catalogfi/barter/pkg/swap"
	"github.com/ethereum/go-ethereum/common"
)

// Transfer records one transfer instruction issued to the custody mock.
type Transfer struct {
	Asset swap.Asset
	From  common.Address
	To    common.Address
}

// Custody is an in-memory custody service. It enforces the same
// preconditions the real transfer primitive does: the sender must be the
// true owner and the operator must hold approval.
type Custody struct {
	mu          sync.Mutex
	operator    common.Address
	owners      map[string]common.Address
	approved    map[string]common.Address
	approveAll  map[string]bool
	transferErr error
	transfers   []Transfer
}

var _ custody.Service = (*Custody)(nil)

func NewCustody(operator common.Address) *Custody {
	return &Custody{
		operator:   operator,
		owners:     map[string]common.Address{},
		approved:   map[string]common.Address{},
		approveAll: map[string]bool{},
	}
}

func (c *Custody) Operator() common.Address {
	return c.operator
}

// SetOwner mints or reassigns an asset.
func (c *Custody) SetOwner(asset swap.Asset, owner common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owners[asset.Key()] = owner
}

// Approve grants a per-asset approval, zero address revokes it.
func (c *Custody) Approve(asset swap.Asset, operator common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.approved[asset.Key()] = operator
}

// ApproveAll grants or revokes a blanket operator approval for every asset
// the owner holds on the contract.
func (c *Custody) ApproveAll(contract, owner, operator common.Address, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.approveAll[allKey(contract, owner, operator)] = ok
}

// FailTransfers makes every subsequent Transfer call return err.
func (c *Custody) FailTransfers(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transferErr = err
}

// Transfers returns every transfer instruction issued so far.
func (c *Custody) Transfers() []Transfer {
	c.mu.Lock()
	defer c.mu.Unlock()
	transfers := make([]Transfer, len(c.transfers))
	copy(transfers, c.transfers)
	return transfers
}

func (c *Custody) OwnerOf(ctx context.Context, asset swap.Asset) (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, ok := c.owners[asset.Key()]
	if !ok {
		return common.Address{}, fmt.Errorf("unknown asset %s", asset)
	}
	return owner, nil
}

func (c *Custody) Approved(ctx context.Context, asset swap.Asset) (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.approved[asset.Key()], nil
}

func (c *Custody) ApprovedForAll(ctx context.Context, contract, owner, operator common.Address) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.approveAll[allKey(contract, owner, operator)], nil
}

func (c *Custody) Transfer(ctx context.Context, asset swap.Asset, from, to common.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transferErr != nil {
		return c.transferErr
	}
	owner, ok := c.owners[asset.Key()]
	if !ok || owner != from {
		return fmt.Errorf("transfer of %s reverted: %s is not the owner", asset, from.Hex())
	}
	if !c.approveAll[allKey(asset.Contract, owner, c.operator)] && c.approved[asset.Key()] != c.operator {
		return fmt.Errorf("transfer of %s reverted: operator not approved", asset)
	}
	c.owners[asset.Key()] = to
	c.transfers = append(c.transfers, Transfer{Asset: asset, From: from, To: to})
	return nil
}

func allKey(contract, owner, operator common.Address) string {
	return fmt.Sprintf("%s|%s|%s", contract.Hex(), owner.Hex(), operator.Hex())
}
