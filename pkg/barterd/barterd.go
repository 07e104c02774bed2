// Package barterd wires the swap registry and execution engine to their
// external collaborators: the ERC-721 custody service, the swap store and
// the notification channel.
package barterd

import (
	"crypto/ecdsa"
	"strings"

	"github.com/catalogfi/barter/pkg/barterd/engine"
	"github.com/catalogfi/barter/pkg/barterd/registry"
	"github.com/catalogfi/barter/pkg/custody/erc721"
	"github.com/catalogfi/barter/pkg/notifier"
	"github.com/catalogfi/barter/pkg/store"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	// EthURL is the RPC endpoint of the chain hosting the ERC-721
	// registries.
	EthURL string

	// Key signs transfer instructions; its address is the operator owners
	// approve.
	Key *ecdsa.PrivateKey

	// DB is a postgres DSN or a sqlite file path.
	DB string

	// RedisURL enables the redis notification channel; empty falls back
	// to in-process fan-out.
	RedisURL string

	Logger *zap.Logger
}

type Barterd struct {
	Registry *registry.Registry
	Engine   *engine.Engine
	Store    store.Store
	Notifier notifier.Notifier
}

func New(config Config) (Barterd, error) {
	db, err := openDB(config.DB)
	if err != nil {
		return Barterd{}, err
	}
	storage, err := store.NewStore(db)
	if err != nil {
		return Barterd{}, err
	}

	ethClient, err := ethclient.Dial(config.EthURL)
	if err != nil {
		return Barterd{}, err
	}
	custodyService, err := erc721.New(ethClient, config.Key)
	if err != nil {
		return Barterd{}, err
	}

	var events notifier.Notifier
	if config.RedisURL != "" {
		events, err = notifier.NewRedis(config.RedisURL)
		if err != nil {
			return Barterd{}, err
		}
	} else {
		events = notifier.NewInProc()
	}

	return Barterd{
		Registry: registry.New(storage, custodyService, events, config.Logger.With(zap.String("service", "registry"))),
		Engine:   engine.New(storage, custodyService, config.Logger.With(zap.String("service", "engine"))),
		Store:    storage,
		Notifier: events,
	}, nil
}

func openDB(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}
