package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/py-import-scan/internal/config"
	"github.com/l3aro/py-import-scan/internal/log"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "pis",
	Short: "py-import-scan - Python import extraction and indexing",
	Long: `py-import-scan extracts module imports from Python source and builds
import indexes across whole source trees.

Commands:
  imports     Extract the imports of a single file
  scan        Build an import index for a directory tree
  init        Initialize pis configuration

Use "pis [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

// SetVersion wires the build-time version info into the root command.
func SetVersion(version, buildTime string) {
	if buildTime != "" {
		RootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
	} else {
		RootCmd.Version = version
	}
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Config file path")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging")

	RootCmd.AddCommand(importsCmd)
	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(initCmd)
}

// loadConfig resolves the effective configuration for a command invocation.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Verbose = true
	}
	if cfg.Verbose {
		log.Default().SetLevel(log.DebugLevel)
	}
	return cfg, nil
}
