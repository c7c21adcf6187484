package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/py-import-scan/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pis configuration",
	Long: `Guides you through setting up pis configuration step by step and
writes the result to the config file.

Use non-interactive mode with flags:
  pis init --format json --workers 8

For the full flag list, run: pis init --help`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

func init() {
	initCmd.Flags().String("format", "", "Default output format (json, yaml or text)")
	initCmd.Flags().Int("workers", 0, "Parallel parse workers")
	initCmd.Flags().String("cache-path", "", "Parse cache location (empty disables caching)")
	initCmd.Flags().String("location", "", "Where to write the config file (default: "+config.DefaultPath()+")")
}

func runInit(cmd *cobra.Command) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	workersFlag, _ := cmd.Flags().GetInt("workers")
	cachePathFlag, _ := cmd.Flags().GetString("cache-path")
	locationFlag, _ := cmd.Flags().GetString("location")

	cfg := config.DefaultConfig()
	location := config.DefaultPath()
	if locationFlag != "" {
		location = locationFlag
	}

	isNonInteractive := formatFlag != "" || workersFlag > 0 || cachePathFlag != ""
	if isNonInteractive {
		if formatFlag != "" {
			cfg.Format = config.OutputFormat(formatFlag)
		}
		if workersFlag > 0 {
			cfg.Workers = workersFlag
		}
		cfg.CachePath = cachePathFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(location); err != nil {
			return err
		}
		fmt.Printf("Config written to %s\n", location)
		return nil
	}

	var formatChoice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default output format").
				Description("How scan results are rendered unless overridden").
				Options(
					huh.NewOption("JSON", "json"),
					huh.NewOption("YAML", "yaml"),
					huh.NewOption("Text", "text"),
				).
				Value(&formatChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.Format = config.OutputFormat(formatChoice)

	workers := strconv.Itoa(cfg.Workers)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Parallel parse workers").
				Description("How many files are parsed at once during a scan").
				Placeholder(workers).
				Value(&workers).
				Validate(func(v string) error {
					n, err := strconv.Atoi(v)
					if err != nil || n <= 0 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	if n, err := strconv.Atoi(workers); err == nil && n > 0 {
		cfg.Workers = n
	}

	cachePath := ""
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Parse cache location (optional, press Enter to skip)").
				Description("Caching skips re-parsing files that have not changed").
				Placeholder("~/.pis/parse.cache").
				Value(&cachePath),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.CachePath = cachePath

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(location); err != nil {
		return err
	}
	fmt.Printf("Config written to %s\n", location)
	return nil
}
