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
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/lrm/internal/arbiter"
	"github.com/valpere/lrm/internal/autotranslate"
	"github.com/valpere/lrm/internal/detector"
	"github.com/valpere/lrm/internal/placeholder"
	"github.com/valpere/lrm/internal/store"
	"github.com/valpere/lrm/internal/textutil"
	"github.com/valpere/lrm/internal/translator"
)

var (
	translateServices         []string
	translateKeys             []string
	translateTargets          []string
	translateSourceLang       string
	translatePlaceholderTypes []string
	translateOnlyMissing      bool
	translateOverwrite        bool
	translateDryRun           bool
	translateNoCache          bool
	translateNoBackup         bool
	translateArbiterModel     string
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Fill in translations with machine translation",
	Long: `Translate values of the default file into the other languages.

Placeholders are replaced by [PHn] markers before a value is sent to a
provider and restored afterwards; a translation that loses or adds a
placeholder is rejected. Accepted translations are stored in the
translation memory and reused on later runs.

Services: google, libretranslate, mymemory, ollama, openrouter, systran.
The first valid result wins, in the order the services are given, unless
--arbiter-model names an Ollama model to choose among valid results.

Examples:
  lrm translate --target fr,de --only-missing
  lrm translate --services ollama,google --keys Greeting --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := placeholder.ParseTypeSet(translatePlaceholderTypes)
		if err != nil {
			return err
		}
		names := translateServices
		if len(names) == 0 {
			names = cfg.Translate.Services
		}
		services, err := buildServices(names)
		if err != nil {
			return err
		}
		files, err := loadResources()
		if err != nil {
			return err
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		p := &autotranslate.Pipeline{
			Services:     services,
			Store:        db,
			Config:       translator.ServiceConfig{Timeout: cfg.Translate.Timeout},
			Timeout:      cfg.Translate.Timeout,
			MaxAttempts:  cfg.Translate.MaxAttempts,
			SourceLang:   translateSourceLang,
			Placeholders: placeholder.NewDetector(placeholder.WithTypeSet(types)),
		}
		if translateNoCache {
			p.Store = noMemory{db}
		}
		if p.SourceLang == "" {
			p.SourceLang = cfg.Translate.SourceLang
		}
		if p.SourceLang == "" {
			p.Detector = detector.New()
		}
		p.Arbiter = newArbiter(translateArbiterModel)

		report, err := p.Run(cmd.Context(), files, autotranslate.Options{
			Keys:            translateKeys,
			OnlyMissing:     translateOnlyMissing,
			TargetLanguages: translateTargets,
			DryRun:          translateDryRun,
			Overwrite:       translateOverwrite,
		})
		if err != nil {
			if report == nil {
				return fmt.Errorf("translation failed: %w", err)
			}
			fmt.Printf("%s interrupted: %v\n", warnMark("!"), err)
		}
		printReport(report)

		if !translateDryRun && len(report.Modified) > 0 {
			if err := writeFiles(translateNoBackup, report.Modified...); err != nil {
				return err
			}
		}
		if len(report.Rejected)+len(report.Errors) > 0 {
			return errValidationFailed
		}
		return nil
	},
}

func printReport(r *autotranslate.Report) {
	for _, it := range r.Translated {
		fmt.Printf("%s [%s] %s: %s (%s)\n", okMark("✓"), it.Language, it.Key,
			textutil.Cell(it.Translation, cellWidth), it.Provider)
	}
	for _, it := range r.Rejected {
		fmt.Printf("%s [%s] %s rejected: %s\n", warnMark("!"), it.Language, it.Key, textutil.SingleLine(it.Detail))
	}
	for _, it := range r.Errors {
		fmt.Printf("%s [%s] %s failed: %s\n", errMark("✗"), it.Language, it.Key, textutil.SingleLine(it.Detail))
	}
	fmt.Printf("\nSource language: %s, translated: %d, rejected: %d, failed: %d, skipped: %d\n",
		strings.ToLower(r.SourceLang), len(r.Translated), len(r.Rejected), len(r.Errors), r.Skipped)
	if translateDryRun {
		fmt.Println("Dry run: no files were changed.")
	}
}

// newArbiter returns an Ollama arbiter for model, or for the configured
// arbiter model when model is empty. It returns nil when neither is set.
func newArbiter(model string) arbiter.Arbiter {
	if model == "" {
		model = cfg.Translate.ArbiterModel
	}
	if model == "" {
		return nil
	}
	return arbiter.NewOllamaArbiter(model, cfg.ServiceConfig("ollama").BaseURL)
}

// noMemory keeps the glossary and the log but bypasses translation memory.
type noMemory struct {
	*store.Store
}

func (noMemory) GetCachedTranslation(context.Context, string, string, string) (string, bool, error) {
	return "", false, nil
}

func (noMemory) SaveToMemory(context.Context, string, string, string, string, string) error {
	return nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	f := translateCmd.Flags()
	f.StringSliceVar(&translateServices, "services", nil, "Translation services in priority order (default from config)")
	f.StringSliceVar(&translateKeys, "keys", nil, "Translate only these keys")
	f.StringSliceVar(&translateTargets, "target", nil, "Target language codes (default all)")
	f.StringVar(&translateSourceLang, "source-lang", "", "Language of the default file (default detected)")
	f.StringSliceVar(&translatePlaceholderTypes, "placeholder-types", nil, "Placeholder families to protect (dotnet, printf, icu, template)")
	f.BoolVar(&translateOnlyMissing, "only-missing", false, "Translate only keys absent from the target file")
	f.BoolVar(&translateOverwrite, "overwrite", false, "Retranslate keys that already have a value")
	f.BoolVar(&translateDryRun, "dry-run", false, "Show translations without writing files")
	f.BoolVar(&translateNoCache, "no-cache", false, "Do not read or write translation memory")
	f.BoolVar(&translateNoBackup, "no-backup", false, "Do not back up files before writing")
	f.StringVar(&translateArbiterModel, "arbiter-model", "", "Ollama model that picks the best of several valid translations")
}
