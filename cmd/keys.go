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

	"github.com/spf13/cobra"

	"github.com/valpere/lrm/internal/resource"
)

var (
	keyValues   map[string]string
	keyComment  string
	keyNoBackup bool
)

var addCmd = &cobra.Command{
	Use:   "add <key>",
	Short: "Add a key to every language file",
	Long: `Add a key to every language file. Languages without a --value get an
empty entry.

Example:
  lrm add Greeting --value default="Hello {0}" --value fr="Bonjour {0}"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := loadResources()
		if err != nil {
			return err
		}
		if err := resource.AddKey(files, args[0], keyValues, keyComment); err != nil {
			return fmt.Errorf("failed to add key: %w", err)
		}
		if err := writeFiles(keyNoBackup, files...); err != nil {
			return err
		}
		fmt.Printf("Added key: %s (%d files)\n", args[0], len(files))
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <key>",
	Short: "Change the values or comment of a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(keyValues) == 0 && keyComment == "" {
			return fmt.Errorf("nothing to update: pass --value or --comment")
		}
		files, err := loadResources()
		if err != nil {
			return err
		}
		changed, err := resource.UpdateKey(files, args[0], keyValues, keyComment)
		if err != nil {
			return fmt.Errorf("failed to update key: %w", err)
		}
		if err := writeFiles(keyNoBackup, changed...); err != nil {
			return err
		}
		fmt.Printf("Updated key: %s (%d files)\n", args[0], len(changed))
		return nil
	},
}

var deleteOccurrence int

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a key from every language file",
	Long: `Remove a key from every language file. --occurrence removes only the
n-th (1-based) entry of a duplicated key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := loadResources()
		if err != nil {
			return err
		}
		removed, err := resource.DeleteKey(files, args[0], deleteOccurrence)
		if err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		if err := writeFiles(keyNoBackup, files...); err != nil {
			return err
		}
		fmt.Printf("Deleted key: %s (%d entries)\n", args[0], removed)
		return nil
	},
}

var mergeStrategy string

var mergeDuplicatesCmd = &cobra.Command{
	Use:   "merge-duplicates [key]",
	Short: "Collapse duplicated keys into a single entry",
	Long: `Collapse duplicated keys into one entry per file. Without a key every
duplicated key is merged.

Strategies: first, last, first-non-empty.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := resource.ParseMergeStrategy(mergeStrategy)
		if err != nil {
			return err
		}
		key := ""
		if len(args) == 1 {
			key = args[0]
		}
		files, err := loadResources()
		if err != nil {
			return err
		}

		var changed []*resource.File
		total := 0
		for _, f := range files {
			if n := resource.MergeDuplicates(f, key, strategy); n > 0 {
				changed = append(changed, f)
				total += n
				fmt.Printf("%s: removed %d duplicate entries\n", f.Language.Name, n)
			}
		}
		if len(changed) == 0 {
			fmt.Println("No duplicates found.")
			return nil
		}
		if err := writeFiles(keyNoBackup, changed...); err != nil {
			return err
		}
		fmt.Printf("%s Merged %d entries in %d files\n", okMark("✓"), total, len(changed))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringToStringVar(&keyValues, "value", nil, "Value per language as lang=value (default=... for the default file)")
		c.Flags().StringVar(&keyComment, "comment", "", "Key comment")
	}
	for _, c := range []*cobra.Command{addCmd, updateCmd, deleteCmd, mergeDuplicatesCmd} {
		c.Flags().BoolVar(&keyNoBackup, "no-backup", false, "Do not back up files before writing")
		rootCmd.AddCommand(c)
	}
	deleteCmd.Flags().IntVar(&deleteOccurrence, "occurrence", 0, "Remove only this occurrence of a duplicated key")
	mergeDuplicatesCmd.Flags().StringVar(&mergeStrategy, "strategy", "first", "Which duplicate to keep (first, last, first-non-empty)")
}
