// Package notifier is the append-only event channel consumers watch to
// discover swaps awaiting counterparty action. One event is published per
// created swap; execution and cancellation emit nothing, callers poll swap
// status instead.
package notifier

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type SwapCreated struct {
	ID           uint64         `json:"id"`
	Initiator    common.Address `json:"initiator"`
	Counterparty common.Address `json:"counterparty"`
}

type Notifier interface {
	// SwapCreated publishes the creation event.
	SwapCreated(ctx context.Context, event SwapCreated) error

	// Subscribe returns a channel of creation events. The channel closes
	// when ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan SwapCreated, error)
}
