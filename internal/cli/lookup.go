package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [code]",
	Short: "List every document containing a code",
	Long:  `Case and hyphens are ignored when comparing codes. Newest documents are listed first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	tenant, err := requireTenant()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	matches, err := a.search.FindByCode(ctx, tenant, args[0])
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if outputJSON {
		return printJSON(cmd, matches)
	}

	if len(matches) == 0 {
		cmd.Println("No documents found.")
		return nil
	}
	for i := range matches {
		m := &matches[i]
		cmd.Printf("  %s  %s  [%s]\n", m.Document.ID, describeDocument(&m.Document), m.MatchedCode)
	}
	return nil
}
