package commands

import (
	"fmt"

	"github.com/catalogfi/barter/daemon/types"
	"github.com/catalogfi/barter/rpcclient"
	"github.com/spf13/cobra"
)

func Execute(rpcClient rpcclient.Client) *cobra.Command {
	var (
		from   string
		swapID uint64
	)

	var cmd = &cobra.Command{
		Use:   "execute",
		Short: "Accept and settle a swap you are the counterparty of",
		Run: func(c *cobra.Command, args []string) {
			executeSwap := types.RequestExecute{
				From:   from,
				SwapID: swapID,
			}

			if _, err := rpcClient.ExecuteSwap(executeSwap); err != nil {
				cobra.CheckErr(fmt.Errorf("failed to send request: %w", err))
			}
			fmt.Printf("successfully executed swap %d\n", swapID)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Address of the accepting party")
	cmd.MarkFlagRequired("from")
	cmd.Flags().Uint64Var(&swapID, "id", 0, "Swap id to execute")
	cmd.MarkFlagRequired("id")
	return cmd
}
