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

func List(rpcClient rpcclient.Client) *cobra.Command {
	var (
		party   string
		status  string
		page    int
		perPage int
	)

	var cmd = &cobra.Command{
		Use:   "list",
		Short: "List swaps in the registry",
		Run: func(c *cobra.Command, args []string) {
			listSwaps := types.RequestList{
				Party:   party,
				Status:  status,
				Page:    page,
				PerPage: perPage,
			}

			resp, err := rpcClient.ListSwaps(listSwaps)
			if err != nil {
				cobra.CheckErr(fmt.Errorf("failed to send request: %w", err))
			}

			var infos []types.SwapInfo
			if err := json.Unmarshal(resp, &infos); err != nil {
				cobra.CheckErr(fmt.Errorf("failed to unmarshal response: %w", err))
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleRounded)
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Swap ID", "Initiator", "Counterparty", "Legs", "Status", "Expires At"})
			rows := make([]table.Row, len(infos))
			for i, info := range infos {
				rows[i] = table.Row{info.ID, info.Initiator, info.Counterparty, len(info.Legs), info.Status, info.ExpiresAt}
			}
			t.AppendRows(rows)
			t.Render()
		},
	}

	cmd.Flags().StringVar(&party, "party", "", "address to filter with (default: any)")
	cmd.Flags().StringVar(&status, "status", "", "active, executed or cancelled (default: any)")
	cmd.Flags().IntVar(&page, "page", 1, "page number (default: 1)")
	cmd.Flags().IntVar(&perPage, "per-page", 10, "per page number (default: 10)")
	return cmd
}
