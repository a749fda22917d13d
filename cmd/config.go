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

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/valpere/lrm/internal/textutil"
	"github.com/valpere/lrm/internal/translator"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage provider settings",
	Long: `Show translation providers and store their API keys in .lrm.yaml.

Keys can also be given as environment variables, e.g. LRM_PROVIDERS_OPENROUTER_API_KEY.`,
}

var configProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List translation providers and whether they are configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := newTable("Provider", "Name", "API key", "Configured")
		for _, p := range translator.Providers() {
			key := cfg.ServiceConfig(p.Name).APIKey
			configured := !p.RequiresAPIKey || key != ""
			if p.Name == "google" {
				configured = configured || cfg.ServiceConfig(p.Name).Credentials != ""
			}
			table.Append([]string{
				p.Name, p.DisplayName,
				lo.Ternary(p.RequiresAPIKey, "required", "optional"),
				lo.Ternary(configured, okMark("yes"), warnMark("no")),
			})
		}
		table.Render()
		fmt.Printf("Config file: %s\n", textutil.Cell(cfg.File(), 80))
		return nil
	},
}

var configSetAPIKeyCmd = &cobra.Command{
	Use:   "set-api-key <provider> <key>",
	Short: "Store the API key of a provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetAPIKey(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to set API key: %w", err)
		}
		fmt.Printf("API key for %s saved to %s\n", args[0], cfg.File())
		return nil
	},
}

var configDeleteAPIKeyCmd = &cobra.Command{
	Use:   "delete-api-key <provider>",
	Short: "Remove the stored API key of a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.DeleteAPIKey(args[0]); err != nil {
			return fmt.Errorf("failed to delete API key: %w", err)
		}
		fmt.Printf("API key for %s removed from %s\n", args[0], cfg.File())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configProvidersCmd)
	configCmd.AddCommand(configSetAPIKeyCmd)
	configCmd.AddCommand(configDeleteAPIKeyCmd)
}
