package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	models "codearchive/internal/domain/models/archive"
)

var searchFile string

var searchCmd = &cobra.Command{
	Use:   "search [codes...]",
	Short: "Find the documents covering a list of codes",
	Long: `Selects documents greedily until no remaining document adds a requested
code. Codes come from the arguments, or from a pasted table with --file
(use "-" for stdin), where the first column of each line is the code.`,
	Example: `  archivectl search AB-100 AB-200
  pbpaste | archivectl search -f -`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchFile, "file", "f", "", "read pasted codes from a file (- for stdin)")
	rootCmd.AddCommand(searchCmd)
}

func readPaste(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read codes: %w", err)
	}
	return string(data), nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && searchFile == "" {
		return errors.New("give codes as arguments or use --file")
	}
	if len(args) > 0 && searchFile != "" {
		return errors.New("codes and --file are mutually exclusive")
	}
	tenant, err := requireTenant()
	if err != nil {
		return err
	}

	var raw string
	if searchFile != "" {
		if raw, err = readPaste(cmd, searchFile); err != nil {
			return err
		}
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var result *models.SearchResult
	if searchFile != "" {
		result, err = a.search.SearchText(ctx, tenant, raw)
	} else {
		result, err = a.search.Search(ctx, tenant, args)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if outputJSON {
		return printJSON(cmd, result)
	}
	outputSearchTable(cmd, result)
	return nil
}

func outputSearchTable(cmd *cobra.Command, result *models.SearchResult) {
	total := len(result.CoveredCodes) + len(result.UncoveredCodes)
	if total == 0 {
		cmd.Println("No codes given.")
		return
	}

	if len(result.SelectedDocuments) == 0 {
		cmd.Println("No documents found.")
	}
	for i := range result.SelectedDocuments {
		sel := &result.SelectedDocuments[i]
		cmd.Printf("  [%d] %s\n", i+1, describeDocument(&sel.Document))
		cmd.Printf("      id: %s\n", sel.Document.ID)
		if sel.Document.SourceRef != nil {
			cmd.Printf("      file: %s\n", *sel.Document.SourceRef)
		}
		cmd.Printf("      codes: %s\n", strings.Join(sel.MatchedCodes, ", "))
	}

	cmd.Println()
	cmd.Printf("Covered %d of %d codes.\n", len(result.CoveredCodes), total)
	if len(result.UncoveredCodes) > 0 {
		cmd.Printf("Not found: %s\n", strings.Join(result.UncoveredCodes, ", "))
	}
}
