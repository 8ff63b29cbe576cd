package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greghernandez/docsync/internal/sync"
)

var (
	pullTitle string
	pullExact bool
)

var pullCmd = &cobra.Command{
	Use:   "pull [title]",
	Short: "Mirror the remote document tree once",
	Long: `Pull walks the remote folder tree and exports every document whose
change tag differs from the locally recorded one. With a title argument
only matching documents are pulled, flat into the mirror root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := sync.Options{
			Title:       pullTitle,
			Force:       globalFlags.Force,
			Exact:       pullExact,
			Credentials: flagCredentials(),
		}
		if len(args) == 1 {
			opts.Title = args[0]
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine := sync.NewEngine(cfg, newService(), logger)
		return engine.Run(ctx, opts)
	},
}

func init() {
	pullCmd.Flags().StringVar(&pullTitle, "title", "", "Pull only documents matching this title")
	pullCmd.Flags().BoolVar(&pullExact, "exact", false, "Match the title exactly instead of as a substring")
	rootCmd.AddCommand(pullCmd)
}
