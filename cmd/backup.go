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
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/valpere/lrm/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "List and restore resource file backups",
	Long: `Every command that changes a resource file first copies it to
.backups/ next to the file. The newest copies per file are kept.`,
}

var backupListCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List the backups of a resource file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backups, err := backup.NewManager().ListBackups(resolveResourceFile(args[0]))
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}
		if len(backups) == 0 {
			fmt.Println("No backups found.")
			return nil
		}

		table := newTable("Backup", "Created", "Size")
		for _, b := range backups {
			table.Append([]string{filepath.Base(b.Path), humanize.Time(b.CreatedAt), humanize.Bytes(uint64(b.Size))})
		}
		table.Render()
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <backup> <file>",
	Short: "Restore a resource file from a backup",
	Long: `Restore a resource file from one of its backups. The current content is
backed up first.

Example:
  lrm backup restore Strings.fr.20250101_120000.resx Strings.fr.resx`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := resolveResourceFile(args[1])
		source := args[0]
		if filepath.Base(source) == source {
			source = filepath.Join(backup.Dir(filepath.Dir(target)), source)
		}
		if err := backup.NewManager().Restore(source, target); err != nil {
			return fmt.Errorf("failed to restore backup: %w", err)
		}
		fmt.Printf("%s Restored %s from %s\n", okMark("✓"), target, filepath.Base(source))
		return nil
	},
}

// resolveResourceFile treats a bare file name as relative to the resource
// directory.
func resolveResourceFile(name string) string {
	if filepath.Base(name) == name {
		return filepath.Join(cfg.ResourcePath, name)
	}
	return name
}

func init() {
	rootCmd.AddCommand(backupCmd)

	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}
