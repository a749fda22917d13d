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
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/valpere/lrm/internal/detector"
	"github.com/valpere/lrm/internal/placeholder"
	"github.com/valpere/lrm/internal/resource"
	"github.com/valpere/lrm/internal/textutil"
	"github.com/valpere/lrm/internal/validator"
)

var (
	validatePlaceholderTypes []string
	validateCheckLanguage    bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate translations against the default language",
	Long: `Compare every language file with the default file and report missing,
extra, empty and duplicate keys, placeholder mismatches and, with
--check-language, values that read as another language.

Placeholder families: dotnet, printf, icu, template (default: all).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := placeholder.ParseTypeSet(validatePlaceholderTypes)
		if err != nil {
			return err
		}
		files, err := loadResources()
		if err != nil {
			return err
		}

		opts := []validator.Option{validator.WithPlaceholderTypes(types)}
		if validateCheckLanguage {
			codes := lo.FilterMap(files, func(f *resource.File, _ int) (string, bool) {
				return f.Language.Code, !f.Language.IsDefault
			})
			opts = append(opts, validator.WithLanguageCheck(detector.ForCodes(append(codes, "en")...)))
		}

		result := validator.New(opts...).Validate(files)
		printValidation(result)
		if !result.IsValid() {
			return errValidationFailed
		}
		return nil
	},
}

func printValidation(r *validator.Result) {
	section := func(title string, m map[string][]string) {
		for _, lang := range sortedLangs(m) {
			fmt.Printf("%s %s [%s]: %s\n", errMark("✗"), title, lang, strings.Join(m[lang], ", "))
		}
	}
	section("Missing keys", r.MissingKeys)
	section("Extra keys", r.ExtraKeys)
	section("Empty values", r.EmptyValues)
	section("Duplicate keys", r.DuplicateKeys)

	for _, lang := range sortedLangs(r.PlaceholderMismatches) {
		for _, m := range r.PlaceholderMismatches[lang] {
			fmt.Printf("%s Placeholder mismatch [%s] %s: %s\n", errMark("✗"), lang, m.Key,
				textutil.SingleLine(m.Result.Summary()))
		}
	}
	for _, lang := range sortedLangs(r.LanguageMismatches) {
		for _, m := range r.LanguageMismatches[lang] {
			fmt.Printf("%s Language mismatch [%s] %s: detected %s\n", warnMark("!"), lang, m.Key, m.Detected)
		}
	}

	s := r.Summary()
	if !s.HasIssues {
		fmt.Println(okMark("✓ All resources are valid"))
		return
	}
	fmt.Printf("\n%s issue(s): %d missing, %d extra, %d empty, %d duplicate, %d placeholder, %d language\n",
		humanize.Comma(int64(s.TotalIssues)), s.MissingCount, s.ExtraCount, s.EmptyCount,
		s.DuplicatesCount, s.PlaceholderCount, s.LanguageCount)
}

func sortedLangs[V any](m map[string]V) []string {
	langs := lo.Keys(m)
	sort.Strings(langs)
	return langs
}

var checkPlaceholderTypes []string

var checkCmd = &cobra.Command{
	Use:   "check <source> <translation>",
	Short: "Check that a translation keeps the placeholders of its source",
	Long: `Check a single source/translation pair without touching any file.

Example:
  lrm check "Hello {0}, you have {count, plural, one {# item} other {# items}}" "Bonjour {0}"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := placeholder.ParseTypeSet(checkPlaceholderTypes)
		if err != nil {
			return err
		}
		det := placeholder.NewDetector(placeholder.WithTypeSet(types))

		for _, p := range det.DetectPlaceholders(args[0]) {
			fmt.Printf("  %-10s %s\n", p.Type, p.Original)
		}

		result := placeholder.NewValidator(det).Validate(args[0], args[1])
		if result.IsValid {
			fmt.Println(okMark("✓ " + result.Summary()))
			return nil
		}
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stdout, "%s %s\n", errMark("✗"), e)
		}
		return errValidationFailed
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-language key counts and coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := loadResources()
		if err != nil {
			return err
		}
		total := 0
		if def := resource.DefaultFile(files); def != nil {
			total = len(def.Keys())
		}

		table := newTable("Language", "File", "Keys", "Translated", "Coverage", "Size", "Modified")
		for _, f := range files {
			size, modified := "-", "-"
			if info, err := os.Stat(f.Language.FilePath); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
				modified = humanize.Time(info.ModTime())
			}
			coverage := 0.0
			if total > 0 {
				coverage = float64(min(f.CompletedCount(), total)) / float64(total) * 100
			}
			table.Append([]string{
				f.Language.DisplayName(),
				textutil.Cell(f.Language.Name, cellWidth),
				humanize.Comma(int64(f.Count())),
				humanize.Comma(int64(f.CompletedCount())),
				fmt.Sprintf("%.1f%%", coverage),
				size,
				modified,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statsCmd)

	validateCmd.Flags().StringSliceVar(&validatePlaceholderTypes, "placeholder-types", nil, "Placeholder families to check (dotnet, printf, icu, template)")
	validateCmd.Flags().BoolVar(&validateCheckLanguage, "check-language", false, "Flag values that read as another language")
	checkCmd.Flags().StringSliceVar(&checkPlaceholderTypes, "placeholder-types", nil, "Placeholder families to check (dotnet, printf, icu, template)")
}
