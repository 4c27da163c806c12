package cmd

import (
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	tokenFlag string
	verbose   bool
	quiet     bool
)

// RootCmd represents the setup-task command.
var RootCmd = &cobra.Command{
	Use:   "setup-task [VERSION]",
	Short: "Install the Task binary and add it to the job PATH",
	Long: `setup-task downloads a go-task/task release for the host platform, caches the
extracted binary in the runner tool cache, adds it to the PATH of subsequent
job steps, and verifies it runs.

The version can be given as a positional argument or through the "version"
action input; it defaults to "latest".`,
	Example: `  # Install the latest release
  setup-task

  # Install a specific version
  setup-task v3.46.4

  # Install with an explicit registry token
  setup-task --github-token "$GITHUB_TOKEN" 3.46.4`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetHandler(cli.Default)
		if verbose {
			log.SetLevel(log.DebugLevel)
			log.Debugf("Verbose logging enabled")
		} else if quiet {
			log.SetLevel(log.ErrorLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
	},
	RunE: runSetup,
}

func init() {
	RootCmd.Flags().StringVar(&tokenFlag, "github-token", "", "Token for the release listing query")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Increase log verbosity")
	RootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress progress output")
}
