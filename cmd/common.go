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
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/olekukonko/tablewriter"

	"github.com/valpere/lrm/internal/backup"
	"github.com/valpere/lrm/internal/resource"
	"github.com/valpere/lrm/internal/store"
	"github.com/valpere/lrm/internal/translator"
)

const cellWidth = 48

// loadResources reads the resource set of the configured directory.
func loadResources() ([]*resource.File, error) {
	files, err := resource.Load(cfg.ResourcePath, cfg.ResourceFormat())
	if err != nil {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}
	return files, nil
}

// writeFiles saves files, snapshotting each one first unless noBackup is set.
func writeFiles(noBackup bool, files ...*resource.File) error {
	parser := resource.NewParser(cfg.ResourceFormat())
	backups := backup.NewManager()

	var errs *multierror.Error
	for _, f := range files {
		if !noBackup {
			if _, err := backups.CreateBackup(f.Language.FilePath); err != nil && !errors.Is(err, backup.ErrNotFound) {
				errs = multierror.Append(errs, fmt.Errorf("failed to back up %s: %w", f.Language.Name, err))
				continue
			}
		}
		if err := parser.Write(f); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// openStore opens the translation memory database, creating its directory.
func openStore() (*store.Store, error) {
	path := cfg.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// buildServices constructs the translation services named in serviceNames
// with the provider settings from the config. LLM providers fall back to
// their default model lists.
func buildServices(serviceNames []string) ([]translator.TranslationService, error) {
	var list []translator.TranslationService
	for _, name := range serviceNames {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		svc, err := translator.NewService(name, cfg.ServiceConfig(name), cfg.Models(name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unknown service: %s, skipping\n", name)
			continue
		}
		list = append(list, svc)
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("no valid services configured")
	}
	return list, nil
}

func newTable(header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(os.Stdout)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(true)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return t
}

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	errMark  = color.New(color.FgRed, color.Bold).SprintFunc()
)
