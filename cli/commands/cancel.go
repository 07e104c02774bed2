package commands

import (
	"fmt"

	"github.com/catalogfi/barter/daemon/types"
	"github.com/catalogfi/barter/rpcclient"
	"github.com/spf13/cobra"
)

func Cancel(rpcClient rpcclient.Client) *cobra.Command {
	var (
		from   string
		swapID uint64
	)

	var cmd = &cobra.Command{
		Use:   "cancel",
		Short: "Withdraw a swap you proposed",
		Run: func(c *cobra.Command, args []string) {
			cancelSwap := types.RequestCancel{
				From:   from,
				SwapID: swapID,
			}

			if _, err := rpcClient.CancelSwap(cancelSwap); err != nil {
				cobra.CheckErr(fmt.Errorf("failed to send request: %w", err))
			}
			fmt.Printf("successfully cancelled swap %d\n", swapID)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Address of the proposing party")
	cmd.MarkFlagRequired("from")
	cmd.Flags().Uint64Var(&swapID, "id", 0, "Swap id to cancel")
	cmd.MarkFlagRequired("id")
	return cmd
}
