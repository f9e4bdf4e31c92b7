package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest [prefix]",
	Short: "Complete a code prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 10, "maximum number of codes")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
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

	codes, err := a.search.Suggest(ctx, tenant, args[0], suggestLimit)
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	if outputJSON {
		return printJSON(cmd, codes)
	}
	for _, code := range codes {
		cmd.Println(code)
	}
	return nil
}
