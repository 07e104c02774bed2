package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/catalogfi/barter/daemon/types"
	"github.com/catalogfi/barter/rpcclient"
	"github.com/spf13/cobra"
)

func Create(rpcClient rpcclient.Client) *cobra.Command {
	var (
		from         string
		counterparty string
		splitIndex   int
		legs         []string
		expiresIn    int64
	)

	var cmd = &cobra.Command{
		Use:   "create",
		Short: "Propose a new swap",
		Long: "Propose a new swap. Legs before the split index must be owned by you, " +
			"legs from the split index on by the counterparty. Each leg is contract:tokenId.",
		Run: func(c *cobra.Command, args []string) {
			requestLegs := make([]types.RequestLeg, len(legs))
			for i, leg := range legs {
				parts := strings.SplitN(leg, ":", 2)
				if len(parts) != 2 {
					cobra.CheckErr(fmt.Errorf("invalid leg %q, expected contract:tokenId", leg))
				}
				requestLegs[i] = types.RequestLeg{Contract: parts[0], TokenID: parts[1]}
			}

			createSwap := types.RequestCreate{
				From:         from,
				Counterparty: counterparty,
				SplitIndex:   splitIndex,
				Legs:         requestLegs,
				ExpiresIn:    expiresIn,
			}

			resp, err := rpcClient.CreateSwap(createSwap)
			if err != nil {
				cobra.CheckErr(fmt.Errorf("failed to send request: %w", err))
			}
			var swapID uint64
			if err := json.Unmarshal(resp, &swapID); err != nil {
				cobra.CheckErr(fmt.Errorf("failed to unmarshal response: %w", err))
			}

			fmt.Printf("successfully created swap with id %d\n", swapID)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Address of the proposing party")
	cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&counterparty, "counterparty", "", "Address of the accepting party")
	cmd.MarkFlagRequired("counterparty")
	cmd.Flags().IntVar(&splitIndex, "split-index", 0, "First leg owned by the counterparty")
	cmd.MarkFlagRequired("split-index")
	cmd.Flags().StringSliceVar(&legs, "leg", nil, "Swap leg as contract:tokenId, repeatable")
	cmd.MarkFlagRequired("leg")
	cmd.Flags().Int64Var(&expiresIn, "expires-in", 0, "Expiration window in seconds (default: never)")
	return cmd
}
