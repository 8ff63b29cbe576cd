package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/greghernandez/docsync/internal/state"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked documents",
	Long:  "List every document in the mirror along with its recorded change tag.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := state.Open(cfg.StatePath())
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.ListRecords(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No tracked documents. Run \"docsync pull\" first.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Path", "Title", "Resource ID", "Change Tag"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		for _, rec := range records {
			path, err := filepath.Rel(cfg.MirrorDir, rec.LocalPath)
			if err != nil {
				path = rec.LocalPath
			}
			table.Append([]string{path, rec.Title, rec.ResourceID, rec.ChangeTag})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
