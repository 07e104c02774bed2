package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/catalogfi/barter/daemon/types"
	"github.com/catalogfi/barter/rpcclient"
	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"
)

func Get(rpcClient rpcclient.Client) *cobra.Command {
	var swapID uint64

	var cmd = &cobra.Command{
		Use:   "get",
		Short: "Show a swap's legs, parties and status",
		Run: func(c *cobra.Command, args []string) {
			resp, err := rpcClient.GetSwap(types.RequestGet{SwapID: swapID})
			if err != nil {
				cobra.CheckErr(fmt.Errorf("failed to send request: %w", err))
			}

			var info types.SwapInfo
			if err := json.Unmarshal(resp, &info); err != nil {
				cobra.CheckErr(fmt.Errorf("failed to unmarshal response: %w", err))
			}

			fmt.Printf("swap %d: %s\n", info.ID, info.Status)
			fmt.Printf("initiator:    %s\n", info.Initiator)
			fmt.Printf("counterparty: %s\n", info.Counterparty)
			if info.ExpiresAt != "" {
				fmt.Printf("expires at:   %s\n", info.ExpiresAt)
			}
			if info.ClosedAt != "" {
				fmt.Printf("closed at:    %s\n", info.ClosedAt)
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleRounded)
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"#", "Contract", "Token ID", "Owner", "Role"})
			rows := make([]table.Row, len(info.Legs))
			for i, leg := range info.Legs {
				rows[i] = table.Row{i, leg.Contract, leg.TokenID, leg.Owner, leg.Role}
			}
			t.AppendRows(rows)
			t.Render()
		},
	}

	cmd.Flags().Uint64Var(&swapID, "id", 0, "Swap id to fetch")
	cmd.MarkFlagRequired("id")
	return cmd
}
