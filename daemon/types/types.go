package types

import (
	"fmt"
	"math/big"
	"time"

	"github.com/catalogfi/barter/pkg/barterd/engine"
	"github.com/catalogfi/barter/pkg/barterd/registry"
	"github.com/catalogfi/barter/pkg/notifier"
	"github.com/catalogfi/barter/pkg/store"
	"github.com/catalogfi/barter/pkg/swap"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type RequestLeg struct {
	Contract string `json:"contract" binding:"required"`
	TokenID  string `json:"tokenId" binding:"required"`
}

type RequestCreate struct {
	From         string       `json:"from" binding:"required"`
	Counterparty string       `json:"counterparty" binding:"required"`
	SplitIndex   int          `json:"splitIndex" binding:"required"`
	Legs         []RequestLeg `json:"legs" binding:"required"`
	ExpiresIn    int64        `json:"expiresIn"` // seconds, 0 means never
}

type RequestExecute struct {
	From   string `json:"from" binding:"required"`
	SwapID uint64 `json:"swapId" binding:"required"`
}

type RequestCancel struct {
	From   string `json:"from" binding:"required"`
	SwapID uint64 `json:"swapId" binding:"required"`
}

type RequestGet struct {
	SwapID uint64 `json:"swapId" binding:"required"`
}

type RequestList struct {
	Party   string `json:"party"`
	Status  string `json:"status"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

type LegInfo struct {
	Contract string `json:"contract"`
	TokenID  string `json:"tokenId"`
	Owner    string `json:"owner"`
	Role     string `json:"role"`
}

type SwapInfo struct {
	ID           uint64    `json:"id"`
	Initiator    string    `json:"initiator"`
	Counterparty string    `json:"counterparty"`
	Legs         []LegInfo `json:"legs"`
	Status       string    `json:"status"`
	ExpiresAt    string    `json:"expiresAt,omitempty"`
	CreatedAt    string    `json:"createdAt"`
	ClosedAt     string    `json:"closedAt,omitempty"`
}

func NewSwapInfo(sw swap.Swap) SwapInfo {
	info := SwapInfo{
		ID:           sw.ID,
		Initiator:    sw.Initiator.Hex(),
		Counterparty: sw.Counterparty.Hex(),
		Legs:         make([]LegInfo, len(sw.Legs)),
		Status:       sw.Status.String(),
		CreatedAt:    sw.CreatedAt.Format(time.RFC3339),
	}
	if sw.ExpiresAt != nil {
		info.ExpiresAt = sw.ExpiresAt.Format(time.RFC3339)
	}
	if sw.ClosedAt != nil {
		info.ClosedAt = sw.ClosedAt.Format(time.RFC3339)
	}
	for i, leg := range sw.Legs {
		info.Legs[i] = LegInfo{
			Contract: leg.Asset.Contract.Hex(),
			TokenID:  leg.Asset.TokenID.String(),
			Owner:    leg.Owner.Hex(),
			Role:     leg.Role.String(),
		}
	}
	return info
}

type CoreConfig struct {
	Registry *registry.Registry
	Engine   *engine.Engine
	Storage  store.Store
	Notifier notifier.Notifier
	Logger   *zap.Logger
}

// ParseAddress rejects anything that is not a well-formed hex address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// ParseAsset converts a request leg into a domain asset. Token ids are
// decimal, or hex with an 0x prefix.
func ParseAsset(leg RequestLeg) (swap.Asset, error) {
	contract, err := ParseAddress(leg.Contract)
	if err != nil {
		return swap.Asset{}, err
	}
	tokenID, ok := new(big.Int).SetString(leg.TokenID, 0)
	if !ok || tokenID.Sign() < 0 {
		return swap.Asset{}, fmt.Errorf("invalid token id %q", leg.TokenID)
	}
	return swap.NewAsset(contract, tokenID), nil
}

// ParseStatus maps a request status filter onto the domain enum. Empty
// matches any status.
func ParseStatus(s string) (swap.Status, error) {
	switch s {
	case "":
		return swap.Unknown, nil
	case "active":
		return swap.Active, nil
	case "executed":
		return swap.Executed, nil
	case "cancelled":
		return swap.Cancelled, nil
	default:
		return swap.Unknown, fmt.Errorf("invalid status %q", s)
	}
}
