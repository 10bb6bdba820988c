package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadreveal/pkg/cache"
	"github.com/matzehuels/roadreveal/pkg/httputil"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local stage and download cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var downloadsOnly, stagesOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached stage results and downloaded maps",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			if !downloadsOnly {
				stages, err := cache.NewFileCache(filepath.Join(dir, "stages"))
				if err != nil {
					return err
				}
				n, _, _ := stages.Stats()
				if err := stages.Clear(); err != nil {
					return fmt.Errorf("clear stage cache: %w", err)
				}
				printSuccess("Cleared %d cached stage results", n)
			}
			if !stagesOnly {
				dl, err := httputil.NewCache(filepath.Join(dir, "downloads"), 0)
				if err != nil {
					return err
				}
				if err := dl.Clear(); err != nil {
					return fmt.Errorf("clear download cache: %w", err)
				}
				printSuccess("Cleared downloaded maps")
			}
			printDetail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&downloadsOnly, "downloads", false, "only clear downloaded maps")
	cmd.Flags().BoolVar(&stagesOnly, "stages", false, "only clear stage results")
	cmd.MarkFlagsMutuallyExclusive("downloads", "stages")

	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number and size of cached stage results",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			stages, err := cache.NewFileCache(filepath.Join(dir, "stages"))
			if err != nil {
				return err
			}
			n, size, err := stages.Stats()
			if err != nil {
				return err
			}
			printKeyValue("Entries", strconv.Itoa(n))
			printKeyValue("Size", formatBytes(size))
			printKeyValue("Directory", stages.Dir())
			return nil
		},
	}
}

// formatBytes renders n with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
