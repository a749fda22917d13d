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
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/valpere/lrm/internal/filter"
	"github.com/valpere/lrm/internal/resource"
	"github.com/valpere/lrm/internal/textutil"
	"github.com/valpere/lrm/internal/validator"
)

var (
	searchMode          string
	searchScope         string
	searchCaseSensitive bool
	searchLang          string
	searchStatuses      []string
	searchLimit         int
	searchOffset        int
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search keys, values and comments",
	Long: `Search resource keys by substring, wildcard (* and ?) or regular
expression, and narrow them by status.

Statuses: missing, extra, empty, duplicate, placeholder, unused.

Examples:
  lrm search "Error.*" --mode wildcard --scope keys
  lrm search --status missing --lang fr`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := filter.ParseMode(searchMode)
		if err != nil {
			return err
		}
		scope, err := filter.ParseScope(searchScope)
		if err != nil {
			return err
		}
		files, err := loadResources()
		if err != nil {
			return err
		}

		infos := filter.BuildKeyInfos(files, validator.New().Validate(files))
		if lo.Contains(searchStatuses, filter.StatusUnused) {
			res, err := runScan(cmd.Context(), resource.DefaultFile(files))
			if err != nil {
				return err
			}
			filter.MarkUnused(infos, res.UnusedKeys)
		}

		text := ""
		if len(args) == 1 {
			text = args[0]
		}
		page := filter.NewService(nil).FilterKeys(infos, filter.Criteria{
			SearchText:     text,
			Mode:           mode,
			CaseSensitive:  searchCaseSensitive,
			Scope:          scope,
			TargetLanguage: searchLang,
			Statuses:       searchStatuses,
			Limit:          searchLimit,
			Offset:         searchOffset,
		})

		langs := lo.Map(files, func(f *resource.File, _ int) string { return f.Language.Label() })
		table := newTable(append(append([]string{"Key"}, langs...), "Status")...)
		for _, k := range page.Results {
			row := []string{k.Key}
			for _, l := range langs {
				row = append(row, textutil.Cell(k.Values[l], cellWidth))
			}
			row = append(row, strings.Join(k.Statuses, ","))
			table.Append(row)
		}
		table.Render()
		fmt.Printf("%d of %d matching keys (%d total)\n", len(page.Results), page.FilteredCount, page.TotalCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchMode, "mode", "substring", "Match mode (substring, wildcard, regex)")
	searchCmd.Flags().StringVar(&searchScope, "scope", "keysAndValues", "Where to search (keys, values, keysAndValues, comments, all)")
	searchCmd.Flags().BoolVar(&searchCaseSensitive, "case-sensitive", false, "Match case")
	searchCmd.Flags().StringVar(&searchLang, "lang", "", "Search values of this language only")
	searchCmd.Flags().StringSliceVar(&searchStatuses, "status", nil, "Keep keys with any of these statuses")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Results to skip")
}
