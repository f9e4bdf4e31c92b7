package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document and its codes",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop cached search results of the tenant",
	Long:  `Only useful with a shared Redis cache (REDIS_URL); the in-process cache lives and dies with the command.`,
	Args:  cobra.NoArgs,
	RunE:  runInvalidate,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(invalidateCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	if err := a.index.RemoveDocument(ctx, tenant, args[0]); err != nil {
		return fmt.Errorf("delete %s: %w", args[0], err)
	}
	cmd.Printf("Deleted %s.\n", args[0])
	return nil
}

func runInvalidate(cmd *cobra.Command, _ []string) error {
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

	if err := a.search.InvalidateTenant(ctx, tenant); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	cmd.Printf("Cache cleared for tenant %s.\n", tenant)
	return nil
}
