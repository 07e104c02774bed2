package utils

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// coinTypeEther is the BIP-44 coin type for EVM chains.
const coinTypeEther uint32 = 60

type Key struct {
	inner *bip32.Key
}

func (key *Key) ECDSA() (*ecdsa.PrivateKey, error) {
	return crypto.ToECDSA(key.inner.Key)
}

func (key *Key) Address() (common.Address, error) {
	ecdsaKey, err := key.ECDSA()
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(ecdsaKey.PublicKey), nil
}

// LoadKey derives the operator key from the configured mnemonic. The
// selector allows multiple operator identities from one mnemonic.
func LoadKey(mnemonic string, selector uint32) (*Key, error) {
	seed := bip39.NewSeed(mnemonic, "")
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	for _, idx := range []uint32{coinTypeEther, selector} {
		masterKey, err = masterKey.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to create child key: %v", err)
		}
	}
	return &Key{masterKey}, nil
}

// OperatorKey is the signing key transfer instructions go out under.
func OperatorKey(mnemonic string) (*ecdsa.PrivateKey, error) {
	key, err := LoadKey(mnemonic, 0)
	if err != nil {
		return nil, err
	}
	return key.ECDSA()
}
