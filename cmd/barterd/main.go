package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	jsonrpc "github.com/catalogfi/barter/daemon/rpc"
	"github.com/catalogfi/barter/daemon/types"
	"github.com/catalogfi/barter/pkg/barterd"
	"github.com/catalogfi/barter/utils"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	config, err := utils.LoadConfig(utils.DefaultConfigPath())
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	key, err := utils.OperatorKey(config.Mnemonic)
	if err != nil {
		return err
	}

	daemon, err := barterd.New(barterd.Config{
		EthURL:   config.EthURL,
		Key:      key,
		DB:       config.DB,
		RedisURL: config.RedisURL,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	server := jsonrpc.NewRpcServer(types.CoreConfig{
		Registry: daemon.Registry,
		Engine:   daemon.Engine,
		Storage:  daemon.Store,
		Notifier: daemon.Notifier,
		Logger:   logger.With(zap.String("service", "rpc")),
	}, config.RpcUserName, config.RpcPassword)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting barterd", zap.String("listen", config.Listen))
	return server.Run(ctx, config.Listen)
}
