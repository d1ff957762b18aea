package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/config"
	"github.com/diffscope/diffscope/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dscope",
	Short: "Diffscope - Logical commit boundaries for messy working trees",
	Long: `Diffscope analyzes your uncommitted changes, groups them into logical
commit boundaries, and suggests a staging strategy with conventional
commit messages for each group.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logrus.New()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}

		// The MCP server keeps stdio clean for the protocol.
		if cmd.Name() == "mcp" {
			logging.Quiet()
		} else if err := logging.Init(logging.DefaultConfig(config.Dir(), verbose)); err != nil {
			logger.WithError(err).Warn("Failed to initialize file logging")
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.diffscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`Diffscope {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(prCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(hookCmd)
}
