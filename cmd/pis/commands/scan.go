package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/py-import-scan/internal/config"
	"github.com/l3aro/py-import-scan/internal/log"
	"github.com/l3aro/py-import-scan/pkg/cache"
	"github.com/l3aro/py-import-scan/pkg/index"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Build an import index for a directory tree",
	Long: `Walks a directory tree, parses every Python file in parallel, and
prints the resulting import index. Unreadable files are reported but do
not fail the scan.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var pc *cache.ParseCache
		if cfg.CachePath != "" {
			pc = cache.New(cfg.CacheSize)
			if err := pc.LoadFile(cfg.CachePath); err != nil {
				log.Default().Warn("ignoring unreadable parse cache", "path", cfg.CachePath, "error", err)
				pc.Clear()
			}
		}

		idx, err := index.Build(root, index.Options{
			Workers:        cfg.Workers,
			IgnoreFileName: cfg.IgnoreFile,
			ExtraExcludes:  cfg.Excludes,
			FollowSymlinks: cfg.FollowSymlinks,
			Cache:          pc,
		})
		if err != nil {
			return err
		}

		if pc != nil {
			if err := pc.SaveFile(cfg.CachePath); err != nil {
				log.Default().Warn("failed to persist parse cache", "path", cfg.CachePath, "error", err)
			}
		}

		if out, _ := cmd.Flags().GetString("output"); out != "" {
			if err := idx.SaveFile(out); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "index written to %s\n", out)
		}

		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			s := idx.Stats()
			fmt.Fprintf(os.Stderr, "scanned %d files, %d imports (%d typechecking-only), %d errors in %s\n",
				s.FileCount, s.ImportCount, s.TypecheckingOnly, s.ErrorCount, idx.Elapsed)
		}

		format := cfg.Format
		if f, _ := cmd.Flags().GetString("format"); f != "" {
			format = config.OutputFormat(f)
		}
		return renderIndex(idx, format)
	},
}

func init() {
	scanCmd.Flags().String("format", "", "Output format: json, yaml or text")
	scanCmd.Flags().String("output", "", "Also persist the index (msgpack) to this path")
	scanCmd.Flags().Bool("stats", false, "Print a timing summary to stderr")
}

func renderIndex(idx *index.Index, format config.OutputFormat) error {
	switch format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(idx, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Println(string(data))
	case config.FormatYAML:
		if err := idx.ExportYAML(os.Stdout); err != nil {
			return err
		}
	case config.FormatText:
		for _, path := range idx.Paths() {
			printImports(path, idx.ImportsOf(path))
		}
		for _, fe := range idx.Errors {
			fmt.Printf("!!! %s: %s\n", fe.Path, fe.Err)
		}
	default:
		return fmt.Errorf("invalid output format %q (want json, yaml or text)", format)
	}
	return nil
}
