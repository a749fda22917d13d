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
	"errors"
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/lrm/internal/config"
)

var version = "0.3.0"

var (
	v   = viper.New()
	cfg *config.Config

	cfgFile      string
	resourcePath string
	formatName   string
	logLevel     string
	dbPathFlag   string
)

// errValidationFailed makes the process exit non-zero after a report has
// already been printed.
var errValidationFailed = errors.New("validation failed")

var rootCmd = &cobra.Command{
	Use:   "lrm",
	Short: "Localization resource manager",
	Long: `lrm manages multi-language resource files (.resx, JSON, YAML).

It validates translations against the default language, checks that
placeholders such as {0}, %s, {count, plural, ...} and ${name} survive
translation, finds keys that source code uses or never uses, and fills
in missing values with machine translation.

Use "lrm <command> --help" for command options.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, cfgFile, resourcePath)
		if err != nil {
			return err
		}
		if err := logging.SetLogLevel("*", cfg.LogLevel); err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	switch {
	case err == nil:
		return
	case errors.Is(err, errValidationFailed):
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&resourcePath, "path", "p", ".", "Resource directory")
	flags.StringVar(&formatName, "format", "resx", "Resource format (resx, json, yaml)")
	flags.StringVar(&cfgFile, "config", "", "Config file (default .lrm.yaml in the resource directory or $HOME)")
	flags.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.StringVar(&dbPathFlag, "db", "", "Translation memory database (default <path>/.lrm/lrm.db)")

	_ = v.BindPFlag("resource_path", flags.Lookup("path"))
	_ = v.BindPFlag("format", flags.Lookup("format"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("db_path", flags.Lookup("db"))
}
