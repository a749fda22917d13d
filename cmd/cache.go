/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/valpere/lrm/internal/textutil"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the translation memory",
	Long: `List, inspect, invalidate and clear the SQLite translation memory, and
show the log of machine translation runs.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all translation memory entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.ListMemory(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No entries in translation memory.")
			return nil
		}

		table := newTable("ID", "Source", "Target", "Provider", "Used", "Last used", "Invalid", "Text", "Translation")
		for _, e := range entries {
			table.Append([]string{
				e.ID, e.SourceLang, e.TargetLang, e.Provider,
				fmt.Sprint(e.UsageCount), humanize.Time(e.LastUsed), fmt.Sprint(e.Invalidated),
				textutil.Cell(e.SourceText, 40), textutil.Cell(e.Translation, 40),
			})
		}
		table.Render()
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show translation memory statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Database:        %s\n", cfg.DatabasePath())
		fmt.Printf("Total entries:   %s\n", humanize.Comma(int64(stats.TotalEntries)))
		fmt.Printf("Active entries:  %s\n", humanize.Comma(int64(stats.ActiveEntries)))
		fmt.Printf("Invalid entries: %s\n", humanize.Comma(int64(stats.InvalidEntries)))
		fmt.Printf("Total usage:     %s\n", humanize.Comma(int64(stats.TotalUsage)))
		return nil
	},
}

var (
	lookupSource    string
	lookupTarget    string
	lookupThreshold float64
)

var cacheLookupCmd = &cobra.Command{
	Use:   "lookup <text>",
	Short: "Look up a remembered translation",
	Long: `Look up the translation of a text. With --threshold below 1 a similar
source text is accepted as well.

Example:
  lrm cache lookup "Save changes" --source en --target fr --threshold 0.85`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if lookupTarget == "" {
			return fmt.Errorf("--target language flag is required")
		}
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		translation, ok, err := db.GetCachedTranslation(cmd.Context(), args[0], lookupSource, lookupTarget)
		if err == nil && !ok && lookupThreshold < 1 {
			translation, ok, err = db.FuzzyGetCachedTranslation(cmd.Context(), args[0], lookupSource, lookupTarget, lookupThreshold)
		}
		if err != nil {
			return fmt.Errorf("failed to look up translation: %w", err)
		}
		if !ok {
			fmt.Println("No translation found.")
			return nil
		}
		fmt.Println(translation)
		return nil
	},
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <id>",
	Short: "Mark a translation memory entry as invalid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.InvalidateMemory(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to invalidate entry: %w", err)
		}
		fmt.Printf("Invalidated entry: %s\n", args[0])
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a translation memory entry by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteMemory(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		fmt.Printf("Deleted entry: %s\n", args[0])
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all entries from translation memory",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ClearMemory(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Printf("Cleared %d entries from translation memory.\n", n)
		return nil
	},
}

var logRunID string

var cacheLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the machine translation log",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.ListLog(cmd.Context(), logRunID)
		if err != nil {
			return fmt.Errorf("failed to list log: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("Translation log is empty.")
			return nil
		}

		table := newTable("When", "Run", "Key", "Lang", "Status", "Provider", "Translation", "Detail")
		for _, e := range entries {
			table.Append([]string{
				humanize.Time(e.CreatedAt), textutil.Truncate(e.RunID, 8), e.Key, e.TargetLang,
				string(e.Status), e.Provider,
				textutil.Cell(e.Translation, 40), textutil.Cell(e.Detail, 40),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheLookupCmd.Flags().StringVarP(&lookupSource, "source", "s", "", "Source language code (e.g. en)")
	cacheLookupCmd.Flags().StringVarP(&lookupTarget, "target", "t", "", "Target language code (e.g. fr)")
	cacheLookupCmd.Flags().Float64Var(&lookupThreshold, "threshold", 1, "Minimum similarity for a fuzzy match (0-1)")
	cacheLogCmd.Flags().StringVar(&logRunID, "run", "", "Show one run only")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheLookupCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheLogCmd)
}
