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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/lrm/internal/exchange"
	"github.com/valpere/lrm/internal/validator"
)

var (
	exportOutput        string
	exportIncludeStatus bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all languages to CSV",
	Long: `Export every key with one column per language. --include-status adds a
column with the validation status of each key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := loadResources()
		if err != nil {
			return err
		}
		var result *validator.Result
		if exportIncludeStatus {
			result = validator.New().Validate(files)
		}

		var w io.Writer = os.Stdout
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			w = f
		}
		if err := exchange.Export(w, files, result); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		if w != os.Stdout {
			fmt.Fprintf(os.Stderr, "Exported %d languages to %s\n", len(files), exportOutput)
		}
		return nil
	},
}

var (
	importOverwrite bool
	importNoBackup  bool
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import values from CSV",
	Long: `Import a CSV in the export layout. Columns match files by file name or by
language code. Existing values change only with --overwrite.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer in.Close()

		rows, err := exchange.ParseCSV(in)
		if err != nil {
			return fmt.Errorf("failed to parse CSV: %w", err)
		}
		files, err := loadResources()
		if err != nil {
			return err
		}

		stats := exchange.Import(rows, files, importOverwrite)
		if stats.Added+stats.Updated > 0 {
			if err := writeFiles(importNoBackup, files...); err != nil {
				return err
			}
		}
		fmt.Printf("Rows: %d, added: %d, updated: %d, skipped: %d\n", stats.TotalRows, stats.Added, stats.Updated, stats.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportIncludeStatus, "include-status", false, "Add a validation status column")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Replace existing values")
	importCmd.Flags().BoolVar(&importNoBackup, "no-backup", false, "Do not back up files before writing")
}
