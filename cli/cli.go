package cli

import (
	"github.com/TheZeroSlave/zapsentry"
	"github.com/catalogfi/barter/cli/commands"
	"github.com/catalogfi/barter/rpcclient"
	"github.com/catalogfi/barter/utils"
	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Run(version string) error {
	var cmd = &cobra.Command{
		Use: "barter - NFT atomic swap CLI",
		Run: func(c *cobra.Command, args []string) {
			c.HelpFunc()(c, args)
		},
		Version:           version,
		DisableAutoGenTag: true,
	}

	envConfig, err := utils.LoadConfig(utils.DefaultConfigPath())
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	if envConfig.Sentry != "" {
		client, err := sentry.NewClient(sentry.ClientOptions{Dsn: envConfig.Sentry})
		if err != nil {
			return err
		}
		cfg := zapsentry.Configuration{
			Level: zapcore.ErrorLevel,
		}
		core, err := zapsentry.NewCore(cfg, zapsentry.NewSentryClientFromClient(client))
		if err != nil {
			return err
		}
		logger = zapsentry.AttachCoreToLogger(core, logger)
		defer logger.Sync()
	}

	protocol := "https"
	if envConfig.NoTLS {
		protocol = "http"
	}

	rpcClient := rpcclient.NewClient(envConfig.RpcUserName, envConfig.RpcPassword, protocol, envConfig.RPCServer)

	cmd.AddCommand(commands.Create(rpcClient))
	cmd.AddCommand(commands.Execute(rpcClient))
	cmd.AddCommand(commands.Cancel(rpcClient))
	cmd.AddCommand(commands.Get(rpcClient))
	cmd.AddCommand(commands.List(rpcClient))

	return cmd.Execute()
}
