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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/lrm/internal/api"
	"github.com/valpere/lrm/internal/backup"
	"github.com/valpere/lrm/internal/resource"
)

var languagesCmd = &cobra.Command{
	Use:     "languages",
	Aliases: []string{"lang"},
	Short:   "List, add and remove language files",
}

var languagesOutput string

var languagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the languages of the resource set",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := loadResources()
		if err != nil {
			return err
		}
		infos := api.LanguageInfos(files)

		switch languagesOutput {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		case "simple":
			for _, l := range infos {
				fmt.Println(resource.Language{Code: l.Code, IsDefault: l.IsDefault}.Label())
			}
			return nil
		case "table":
			table := newTable("Code", "Language", "File", "Keys", "Coverage")
			for _, l := range infos {
				table.Append([]string{
					resource.Language{Code: l.Code, IsDefault: l.IsDefault}.Label(),
					l.DisplayName,
					l.Name,
					fmt.Sprint(l.TotalKeys),
					fmt.Sprintf("%.1f%%", l.Coverage),
				})
			}
			table.Render()
			return nil
		}
		return fmt.Errorf("unknown output format %q (table, simple, json)", languagesOutput)
	},
}

var (
	languagesCopyFrom string
	languagesEmpty    bool
)

var languagesAddCmd = &cobra.Command{
	Use:   "add <culture-code>",
	Short: "Create a language file",
	Long: `Create the file for a new culture. Keys are copied from the default file
with empty values; --copy-from copies the values of another language too
unless --empty is set.

Example:
  lrm languages add fr-CA --copy-from fr`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := loadResources()
		if err != nil {
			return err
		}
		def := resource.DefaultFile(files)
		if def == nil {
			return errors.New("no default language file")
		}
		source := def
		if languagesCopyFrom != "" {
			if source = resource.FindFile(files, languagesCopyFrom); source == nil {
				return fmt.Errorf("language '%s' not found", languagesCopyFrom)
			}
		}

		code := strings.TrimSpace(args[0])
		file, err := resource.NewLanguageFile(cfg.ResourceFormat(), cfg.ResourcePath, def.Language.BaseName, code, source,
			languagesCopyFrom != "" && !languagesEmpty)
		if err != nil {
			return fmt.Errorf("failed to add language: %w", err)
		}
		if err := resource.NewParser(cfg.ResourceFormat()).Write(file); err != nil {
			return err
		}
		fmt.Printf("%s Added %s (%s): %s\n", okMark("✓"), code, resource.DisplayName(code), file.Language.FilePath)
		return nil
	},
}

var languagesRemoveCmd = &cobra.Command{
	Use:   "remove <culture-code>",
	Short: "Delete a language file",
	Long:  `Delete the file of a language. A backup is taken first. The default file cannot be removed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := loadResources()
		if err != nil {
			return err
		}
		if strings.EqualFold(args[0], "default") {
			return resource.ErrDefaultLanguage
		}
		file := resource.FindFile(files, args[0])
		if file == nil {
			return fmt.Errorf("language '%s' not found", args[0])
		}
		if _, err := backup.NewManager().CreateBackup(file.Language.FilePath); err != nil {
			return fmt.Errorf("failed to back up %s: %w", file.Language.Name, err)
		}
		if err := resource.DeleteLanguageFile(file.Language); err != nil {
			return fmt.Errorf("failed to remove language: %w", err)
		}
		fmt.Printf("Removed language: %s (%s)\n", file.Language.Code, file.Language.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)

	languagesListCmd.Flags().StringVarP(&languagesOutput, "output", "o", "table", "Output format (table, simple, json)")
	languagesAddCmd.Flags().StringVar(&languagesCopyFrom, "copy-from", "", "Copy keys and values from this language")
	languagesAddCmd.Flags().BoolVar(&languagesEmpty, "empty", false, "Copy keys only, with empty values")

	languagesCmd.AddCommand(languagesListCmd)
	languagesCmd.AddCommand(languagesAddCmd)
	languagesCmd.AddCommand(languagesRemoveCmd)
}
