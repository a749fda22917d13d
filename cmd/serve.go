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
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/lrm/internal/api"
	"github.com/valpere/lrm/internal/backup"
	"github.com/valpere/lrm/internal/translator"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr      string
	serveRateLimit int
	serveNoBackup  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resource set over an HTTP/JSON API",
	Long: `Start the HTTP API for the resource directory. Routes live under /api:
languages, validation, placeholders, scan, search and translation.

The server listens on 127.0.0.1:5000 unless --addr or serve.addr is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.Serve.Addr
		}
		rate := serveRateLimit
		if rate <= 0 {
			rate = cfg.Serve.RateLimit
		}

		opts := api.Options{
			ResourceDir:   cfg.ResourcePath,
			SourceDir:     cfg.SourceDir(),
			Format:        cfg.ResourceFormat(),
			RateLimit:     rate,
			ServiceConfig: translator.ServiceConfig{Timeout: cfg.Translate.Timeout},
			SourceLang:    cfg.Translate.SourceLang,
			Arbiter:       newArbiter(""),
		}
		if len(cfg.Scan.Exclude) > 0 {
			opts.ScanExcludes = cfg.Scan.Exclude
		}
		if !serveNoBackup {
			opts.Backups = backup.NewManager()
		}
		if services, err := buildServices(cfg.Translate.Services); err == nil {
			opts.Services = services
		} else {
			fmt.Fprintf(os.Stderr, "Translation disabled: %v\n", err)
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Store = db

		srv := &http.Server{
			Addr:              addr,
			Handler:           api.New(opts).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			fmt.Printf("Serving %s on http://%s\n", cfg.ResourcePath, addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		fmt.Println("Server stopped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default 127.0.0.1:5000)")
	serveCmd.Flags().IntVar(&serveRateLimit, "rate-limit", 0, "Requests per minute per client IP (default 100)")
	serveCmd.Flags().BoolVar(&serveNoBackup, "no-backup", false, "Do not back up files before writing")
}
