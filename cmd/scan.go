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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valpere/lrm/internal/resource"
	"github.com/valpere/lrm/internal/scanner"
)

var (
	scanSource         string
	scanExcludes       []string
	scanShowReferences bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find unused keys and keys referenced in code but missing",
	Long: `Walk the source tree and match resource key references such as
Resources.Key, GetString("Key"), Localizer["Key"] and t("Key") against the
default resource file.

The source directory defaults to the parent of the resource directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := loadResources()
		if err != nil {
			return err
		}
		res, err := runScan(cmd.Context(), resource.DefaultFile(files))
		if err != nil {
			return err
		}

		fmt.Printf("Scanned %d files, %d references to %d keys\n\n", res.FilesScanned, res.TotalReferences, res.UniqueKeysFound)
		if len(res.UnusedKeys) > 0 {
			fmt.Printf("%s Unused keys (%d):\n", warnMark("!"), len(res.UnusedKeys))
			for _, k := range res.UnusedKeys {
				fmt.Printf("  %s\n", k)
			}
		}
		if len(res.MissingKeys) > 0 {
			fmt.Printf("%s Missing keys (%d):\n", errMark("✗"), len(res.MissingKeys))
			for _, k := range res.MissingKeys {
				fmt.Printf("  %s\n", k)
			}
		}
		if len(res.UnusedKeys)+len(res.MissingKeys) == 0 {
			fmt.Println(okMark("✓ Every key is referenced and every reference resolves"))
		}

		if scanShowReferences {
			table := newTable("Key", "File", "Line", "Pattern", "Confidence")
			for _, u := range res.AllKeyUsages {
				for _, r := range u.References {
					table.Append([]string{u.Key, r.File, fmt.Sprint(r.Line), r.Pattern, r.Confidence.String()})
				}
			}
			fmt.Println()
			table.Render()
		}
		if len(res.MissingKeys) > 0 {
			return errValidationFailed
		}
		return nil
	},
}

// runScan scans the configured source tree against defaultFile.
func runScan(ctx context.Context, defaultFile *resource.File) (*scanner.Result, error) {
	excludes := cfg.Scan.Exclude
	if len(scanExcludes) > 0 {
		excludes = scanExcludes
	}
	if len(excludes) == 0 {
		excludes = nil
	}
	var patterns []scanner.Pattern
	if name := cfg.Scan.ClassName; name != "" && name != "Resources" {
		patterns = scanner.DefaultPatterns(name)
	}

	sc, err := scanner.New(patterns, excludes)
	if err != nil {
		return nil, err
	}
	if len(cfg.Scan.Extensions) > 0 {
		sc.Extensions = cfg.Scan.Extensions
	}

	root := cfg.SourceDir()
	if scanSource != "" {
		root = scanSource
	}
	return sc.Scan(ctx, root, defaultFile)
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanSource, "source", "", "Source directory to scan")
	scanCmd.Flags().StringSliceVar(&scanExcludes, "exclude", nil, "Glob patterns to skip (default bin, obj, node_modules, .git)")
	scanCmd.Flags().BoolVar(&scanShowReferences, "show-references", false, "List every reference found")
}
