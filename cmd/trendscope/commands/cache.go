package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrendScope/internal/cache"
	"TrendScope/internal/errs"

	"github.com/spf13/cobra"
)

// cacheCmd groups cache maintenance.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache maintenance",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry from the configured cache backend",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var expiredOnly bool

func init() {
	cacheClearCmd.Flags().BoolVar(&expiredOnly, "expired", false, "only remove expired entries (sqlite backend)")
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	if a.cache == nil {
		return errs.Configuration("cache", "backend %q could not be opened", a.cfg.Cache.Backend)
	}
	if expiredOnly {
		n, err := a.cache.Prune(ctx)
		if errors.Is(err, cache.ErrPruneUnsupported) {
			return errs.Configuration("cache", "backend %q cannot prune expired entries", a.cfg.Cache.Backend)
		}
		if err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %d expired %s cache entries removed\n", n, a.cfg.Cache.Backend)
		return nil
	}
	if err := a.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s cache cleared\n", a.cfg.Cache.Backend)
	return nil
}
