package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attrition-game/atk/internal/core/services"
	"github.com/attrition-game/atk/pkg/ui"
)

var (
	historyRepo  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List releases published from this machine",
	Long: `List the releases atk has published, newest first.

Records are kept in $XDG_DATA_HOME/atk/publishes.json (or data_dir from the
config). Failed publishes are never recorded.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyRepo, "repo", "r", "", "only show releases of owner/name")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of releases to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	resp, err := historyService.Execute(cmd.Context(), services.HistoryRequest{
		Repository: historyRepo,
		Limit:      historyLimit,
	})
	if err != nil {
		return err
	}

	if len(resp.Records) == 0 {
		fmt.Fprintln(out, ui.FormatInfo("No releases published yet"))
		return nil
	}

	table := ui.NewTable([]ui.TableColumn{
		{Header: "TAG"},
		{Header: "REPOSITORY"},
		{Header: "ASSET"},
		{Header: "SIZE", Align: "right"},
		{Header: "PUBLISHED"},
		{Header: "DOWNLOAD"},
	})
	for _, r := range resp.Records {
		table.AddRow(
			r.Tag,
			r.Repository,
			r.AssetName,
			ui.FormatBytes(r.AssetSize),
			r.PublishedAt.Local().Format("2006-01-02 15:04"),
			r.DownloadURL,
		)
	}

	fmt.Fprint(out, table.Render())
	if resp.Total > len(resp.Records) {
		fmt.Fprintln(out, ui.FormatMuted(fmt.Sprintf("showing %d of %d", len(resp.Records), resp.Total)))
	}
	return nil
}
