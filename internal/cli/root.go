package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greghernandez/docsync/internal/api"
	"github.com/greghernandez/docsync/internal/config"
	"github.com/greghernandez/docsync/internal/logging"
	"github.com/greghernandez/docsync/internal/session"
	"github.com/greghernandez/docsync/internal/types"
	"github.com/greghernandez/docsync/internal/utils"
	"github.com/greghernandez/docsync/pkg/version"
)

var (
	globalFlags types.GlobalFlags
	cfg         *config.Config
	logger      logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Mirror a remote document tree into a local directory",
	Long: `docsync keeps a local directory in sync with a remote document store.
It pulls the remote folder tree down as editable files and pushes local
edits back as they happen.`,
	Version:       version.Get().Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(globalFlags.Config)
		if err != nil {
			return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
				err.Error()).Build())
		}

		logConfig := logging.LogConfig{
			Level:           logging.ParseLevel(cfg.LogLevel),
			OutputFile:      cfg.LogFile,
			EnableConsole:   !globalFlags.Quiet,
			EnableColor:     true,
			EnableTimestamp: true,
			RedactSensitive: true,
		}
		if globalFlags.LogFile != "" {
			logConfig.OutputFile = globalFlags.LogFile
		}
		if globalFlags.Verbose {
			logConfig.Level = logging.DEBUG
		}
		if globalFlags.Quiet {
			logConfig.Level = logging.ERROR
		}

		logger, err = logging.NewLogger(logConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Get().String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Username, "username", "u", "", "Account username (prompted when omitted)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Password, "password", "p", "", "Account password (prompted when omitted)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Config, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Force, "force", "f", false, "Re-export documents even when change tags match")

	rootCmd.AddCommand(versionCmd)
}

// newService builds the remote document store client from the loaded
// configuration.
func newService() *api.Client {
	return api.NewClient(api.Options{
		BaseURL:      cfg.ServiceURL,
		MaxRetries:   cfg.MaxRetries,
		RetryDelayMs: cfg.RetryBaseDelay,
		RateLimitQPS: cfg.RateLimitQPS,
		Timeout:      cfg.Timeout(),
		Logger:       logger,
	})
}

func flagCredentials() session.Credentials {
	return session.Credentials{
		Username: globalFlags.Username,
		Password: globalFlags.Password,
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return utils.ExitCodeFor(err)
	}
	return utils.ExitSuccess
}
