// Package erc721 implements the custody service against ERC-721 registries
// on an EVM chain. Each asset contract is an ERC-721 deployment; the swap
// daemon's key is the operator that owners approve.
package erc721

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/catalogfi/barter/pkg/custody"
	"github.com/catalogfi/barter/pkg/swap"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// The subset of the ERC-721 interface the protocol consumes.
const erc721ABI = `[
	{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"getApproved","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"operator","type":"address"}],"name":"isApprovedForAll","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"name":"safeTransferFrom","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

type Custody struct {
	client   *ethclient.Client
	key      *ecdsa.PrivateKey
	operator common.Address
	chainID  *big.Int
	abi      abi.ABI

	mu    sync.Mutex
	bound map[common.Address]*bind.BoundContract
}

var _ custody.Service = (*Custody)(nil)

func New(client *ethclient.Client, key *ecdsa.PrivateKey) (*Custody, error) {
	parsed, err := abi.JSON(strings.NewReader(erc721ABI))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return &Custody{
		client:   client,
		key:      key,
		operator: crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
		abi:      parsed,
		bound:    map[common.Address]*bind.BoundContract{},
	}, nil
}

func (c *Custody) Operator() common.Address {
	return c.operator
}

func (c *Custody) OwnerOf(ctx context.Context, asset swap.Asset) (common.Address, error) {
	var out []interface{}
	if err := c.contract(asset.Contract).Call(&bind.CallOpts{Context: ctx}, &out, "ownerOf", asset.TokenID); err != nil {
		return common.Address{}, fmt.Errorf("ownerOf %s: %w", asset, err)
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (c *Custody) Approved(ctx context.Context, asset swap.Asset) (common.Address, error) {
	var out []interface{}
	if err := c.contract(asset.Contract).Call(&bind.CallOpts{Context: ctx}, &out, "getApproved", asset.TokenID); err != nil {
		return common.Address{}, fmt.Errorf("getApproved %s: %w", asset, err)
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (c *Custody) ApprovedForAll(ctx context.Context, contract, owner, operator common.Address) (bool, error) {
	var out []interface{}
	if err := c.contract(contract).Call(&bind.CallOpts{Context: ctx}, &out, "isApprovedForAll", owner, operator); err != nil {
		return false, fmt.Errorf("isApprovedForAll on %s: %w", contract.Hex(), err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (c *Custody) Transfer(ctx context.Context, asset swap.Asset, from, to common.Address) error {
	transactor, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return err
	}
	transactor.Context = ctx

	tx, err := c.contract(asset.Contract).Transact(transactor, "safeTransferFrom", from, to, asset.TokenID)
	if err != nil {
		return fmt.Errorf("transfer %s: %w", asset, err)
	}
	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return fmt.Errorf("transfer %s: %w", asset, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transfer %s reverted: %s", asset, tx.Hash().Hex())
	}
	return nil
}

func (c *Custody) contract(addr common.Address) *bind.BoundContract {
	c.mu.Lock()
	defer c.mu.Unlock()

	contract, ok := c.bound[addr]
	if !ok {
		contract = bind.NewBoundContract(addr, c.abi, c.client, c.client, c.client)
		c.bound[addr] = contract
	}
	return contract
}
