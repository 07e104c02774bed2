package handlers

import (
	"context"
	"time"

	"github.com/catalogfi/barter/daemon/types"
	"github.com/catalogfi/barter/pkg/store"
	"github.com/catalogfi/barter/pkg/swap"
)

func Create(ctx context.Context, cfg types.CoreConfig, req types.RequestCreate) (uint64, error) {
	caller, err := types.ParseAddress(req.From)
	if err != nil {
		return 0, err
	}
	counterparty, err := types.ParseAddress(req.Counterparty)
	if err != nil {
		return 0, err
	}
	assets := make([]swap.Asset, len(req.Legs))
	for i, leg := range req.Legs {
		asset, err := types.ParseAsset(leg)
		if err != nil {
			return 0, err
		}
		assets[i] = asset
	}
	expiresIn := time.Duration(req.ExpiresIn) * time.Second
	return cfg.Registry.Create(ctx, caller, counterparty, req.SplitIndex, assets, expiresIn)
}

func Execute(ctx context.Context, cfg types.CoreConfig, req types.RequestExecute) error {
	caller, err := types.ParseAddress(req.From)
	if err != nil {
		return err
	}
	return cfg.Engine.Execute(ctx, caller, req.SwapID)
}

func Cancel(ctx context.Context, cfg types.CoreConfig, req types.RequestCancel) error {
	caller, err := types.ParseAddress(req.From)
	if err != nil {
		return err
	}
	return cfg.Engine.Cancel(ctx, caller, req.SwapID)
}

func Get(cfg types.CoreConfig, req types.RequestGet) (types.SwapInfo, error) {
	sw, err := cfg.Registry.Swap(req.SwapID)
	if err != nil {
		return types.SwapInfo{}, err
	}
	return types.NewSwapInfo(sw), nil
}

func List(cfg types.CoreConfig, req types.RequestList) ([]types.SwapInfo, error) {
	filter := store.Filter{Page: req.Page, PerPage: req.PerPage}
	if req.Party != "" {
		party, err := types.ParseAddress(req.Party)
		if err != nil {
			return nil, err
		}
		filter.Party = &party
	}
	status, err := types.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	filter.Status = status

	swaps, err := cfg.Registry.Swaps(filter)
	if err != nil {
		return nil, err
	}
	infos := make([]types.SwapInfo, len(swaps))
	for i, sw := range swaps {
		infos[i] = types.NewSwapInfo(sw)
	}
	return infos, nil
}
