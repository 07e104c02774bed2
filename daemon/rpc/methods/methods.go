package methods

import (
	"context"
	"encoding/json"

	"github.com/catalogfi/barter/daemon/rpc/handlers"
	"github.com/catalogfi/barter/daemon/types"
)

type Method interface {
	Name() string
	Query(ctx context.Context, cfg *types.CoreConfig, params json.RawMessage) (json.RawMessage, error)
}

type createSwap struct{}

func CreateSwap() Method {
	return &createSwap{}
}

func (m *createSwap) Name() string {
	return "createSwap"
}

func (m *createSwap) Query(ctx context.Context, cfg *types.CoreConfig, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestCreate
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	id, err := handlers.Create(ctx, *cfg, req)
	if err != nil {
		return nil, err
	}
	return json.Marshal(id)
}

type executeSwap struct{}

func ExecuteSwap() Method {
	return &executeSwap{}
}

func (m *executeSwap) Name() string {
	return "executeSwap"
}

func (m *executeSwap) Query(ctx context.Context, cfg *types.CoreConfig, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestExecute
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	if err := handlers.Execute(ctx, *cfg, req); err != nil {
		return nil, err
	}
	return json.Marshal("swap executed successfully")
}

type cancelSwap struct{}

func CancelSwap() Method {
	return &cancelSwap{}
}

func (m *cancelSwap) Name() string {
	return "cancelSwap"
}

func (m *cancelSwap) Query(ctx context.Context, cfg *types.CoreConfig, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestCancel
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	if err := handlers.Cancel(ctx, *cfg, req); err != nil {
		return nil, err
	}
	return json.Marshal("swap cancelled successfully")
}

type getSwap struct{}

func GetSwap() Method {
	return &getSwap{}
}

func (m *getSwap) Name() string {
	return "getSwap"
}

func (m *getSwap) Query(ctx context.Context, cfg *types.CoreConfig, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestGet
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	info, err := handlers.Get(*cfg, req)
	if err != nil {
		return nil, err
	}
	return json.Marshal(info)
}

type listSwaps struct{}

func ListSwaps() Method {
	return &listSwaps{}
}

func (m *listSwaps) Name() string {
	return "listSwaps"
}

func (m *listSwaps) Query(ctx context.Context, cfg *types.CoreConfig, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestList
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	infos, err := handlers.List(*cfg, req)
	if err != nil {
		return nil, err
	}
	return json.Marshal(infos)
}
