// Package registry owns the swap collection: it validates proposals,
// assigns identifiers and announces new swaps on the notification channel.
// No asset moves at creation time.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/catalogfi/barter/pkg/custody"
	"github.com/catalogfi/barter/pkg/notifier"
	"github.com/catalogfi/barter/pkg/store"
	"github.com/catalogfi/barter/pkg/swap"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type Registry struct {
	mu       sync.Mutex
	storage  store.Store
	custody  custody.Service
	notifier notifier.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Registry)

// WithClock overrides the time source, used by the suites to pin the
// expiration boundary.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func New(storage store.Store, custody custody.Service, notifier notifier.Notifier, logger *zap.Logger, opts ...Option) *Registry {
	registry := &Registry{
		storage:  storage,
		custody:  custody,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(registry)
	}
	return registry
}

// Create validates and stores a new swap proposal. The caller becomes the
// initiator and owns legs [0, splitIndex), the counterparty owns the rest.
// expiresIn of zero means the swap never expires. Checks run in a fixed
// order and each failure aborts with no record written:
//
//  1. at least two legs
//  2. counterparty is a real, distinct address
//  3. split index strictly inside the leg list
//  4. no asset appears twice anywhere in the list
//  5. every leg's expected owner matches custody right now
//
// It returns the new swap's id.
func (r *Registry) Create(ctx context.Context, caller, counterparty common.Address, splitIndex int, assets []swap.Asset, expiresIn time.Duration) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(assets) < 2 {
		return 0, swap.ErrTooFewLegs
	}
	if counterparty == (common.Address{}) {
		return 0, swap.ErrNilCounterparty
	}
	if counterparty == caller {
		return 0, swap.ErrSelfSwap
	}
	if splitIndex <= 0 || splitIndex >= len(assets) {
		return 0, fmt.Errorf("%w: %d of %d legs", swap.ErrSplitIndex, splitIndex, len(assets))
	}
	seen := make(map[string]int, len(assets))
	for i, asset := range assets {
		if j, ok := seen[asset.Key()]; ok {
			return 0, swap.NewLegError(i, asset, fmt.Errorf("%w, first seen at leg %d", swap.ErrDuplicateAsset, j))
		}
		seen[asset.Key()] = i
	}

	legs := make([]swap.Leg, len(assets))
	for i, asset := range assets {
		expected, role := caller, swap.RoleInitiator
		if i >= splitIndex {
			expected, role = counterparty, swap.RoleCounterparty
		}
		owner, err := r.custody.OwnerOf(ctx, asset)
		if err != nil {
			return 0, swap.NewLegError(i, asset, err)
		}
		if owner != expected {
			return 0, swap.NewLegError(i, asset, fmt.Errorf("%w: expected %s, custody reports %s",
				swap.ErrOwnershipMismatch, expected.Hex(), owner.Hex()))
		}
		legs[i] = swap.Leg{Asset: asset, Owner: expected, Role: role}
	}

	now := r.now()
	sw := &swap.Swap{
		Initiator:    caller,
		Counterparty: counterparty,
		Legs:         legs,
		Status:       swap.Active,
		CreatedAt:    now,
	}
	if expiresIn > 0 {
		expiresAt := now.Add(expiresIn)
		sw.ExpiresAt = &expiresAt
	}
	if err := r.storage.CreateSwap(sw); err != nil {
		return 0, fmt.Errorf("failed to store swap: %w", err)
	}

	event := notifier.SwapCreated{ID: sw.ID, Initiator: caller, Counterparty: counterparty}
	if err := r.notifier.SwapCreated(ctx, event); err != nil {
		// The swap is durable at this point, consumers can still find it
		// through the query surface.
		r.logger.Error("failed to publish creation event", zap.Uint64("id", sw.ID), zap.Error(err))
	}

	r.logger.Info("swap created",
		zap.Uint64("id", sw.ID),
		zap.String("initiator", caller.Hex()),
		zap.String("counterparty", counterparty.Hex()),
		zap.Int("legs", len(legs)),
		zap.Duration("expiresIn", expiresIn))
	return sw.ID, nil
}

// Swap returns a swap by id.
func (r *Registry) Swap(id uint64) (swap.Swap, error) {
	return r.storage.Swap(id)
}

// Swaps lists swaps matching the filter.
func (r *Registry) Swaps(filter store.Filter) ([]swap.Swap, error) {
	return r.storage.Swaps(filter)
}
