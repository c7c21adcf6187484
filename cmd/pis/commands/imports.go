package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/py-import-scan/pkg/parser"
	"github.com/l3aro/py-import-scan/pkg/types"
)

// importsCmd represents the imports command
var importsCmd = &cobra.Command{
	Use:   "imports <file>",
	Short: "Extract the imports of a single file",
	Long: `Parses one Python file and prints every import it contains: the
fully-qualified dotted name, the line it starts on, and whether it sits
under an "if TYPE_CHECKING:" guard.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]

		info, err := os.Stat(filePath)
		if err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, expected a file: %s", filePath)
		}

		p := parser.NewImportParser()
		imports, err := p.ParseFile(filePath)
		if err != nil {
			return fmt.Errorf("parsing file: %w", err)
		}

		if tcOnly, _ := cmd.Flags().GetBool("typechecking-only"); tcOnly {
			filtered := imports[:0]
			for _, imp := range imports {
				if imp.TypecheckingOnly {
					filtered = append(filtered, imp)
				}
			}
			imports = filtered
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(imports, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printImports(filePath, imports)
		return nil
	},
}

func init() {
	importsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	importsCmd.Flags().Bool("typechecking-only", false, "Only show imports under TYPE_CHECKING guards")
}

func printImports(path string, imports []types.Import) {
	fmt.Printf("=== %s ===\n", path)
	if len(imports) == 0 {
		fmt.Println("no imports")
		return
	}
	for _, imp := range imports {
		marker := ""
		if imp.TypecheckingOnly {
			marker = " [typechecking]"
		}
		fmt.Printf("  %s (line %d)%s\n", imp.ImportedObject, imp.LineNumber, marker)
	}
}
