// Package api serves the resource set of one directory over HTTP/JSON.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"

	"github.com/valpere/lrm/internal/arbiter"
	"github.com/valpere/lrm/internal/autotranslate"
	"github.com/valpere/lrm/internal/backup"
	"github.com/valpere/lrm/internal/filter"
	"github.com/valpere/lrm/internal/resource"
	"github.com/valpere/lrm/internal/scanner"
	"github.com/valpere/lrm/internal/translator"
)

var log = logging.Logger("lrm/api")

const (
	defaultRateLimit = 100
	maxBodyBytes     = 1 << 20
)

type Options struct {
	ResourceDir string
	SourceDir   string
	Format      resource.Format
	// ScanExcludes replaces the scanner's default excludes when set.
	ScanExcludes []string
	// RateLimit is the number of requests per minute allowed per client IP.
	RateLimit int
	// Backups, when set, snapshots files before they are changed.
	Backups *backup.Manager
	// Services and Store back the translate endpoint.
	Services      []translator.TranslationService
	ServiceConfig translator.ServiceConfig
	Store         autotranslate.Store
	SourceLang    string
	Arbiter       arbiter.Arbiter
}

type Server struct {
	opts   Options
	filter *filter.Service
	// mu serialises handlers that write resource files.
	mu sync.Mutex
}

func New(opts Options) *Server {
	if opts.Format == nil {
		opts.Format = resource.ResxFormat{}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	return &Server{
		opts:   opts,
		filter: filter.NewService(filter.NewPatternCache(filter.DefaultCacheSize)),
	}
}

// Router returns the HTTP handler with every route mounted under /api.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(s.opts.RateLimit, time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Route("/languages", func(r chi.Router) {
			r.Get("/", s.listLanguages)
			r.Post("/", s.addLanguage)
			r.Delete("/{code}", s.removeLanguage)
		})
		r.Post("/validation/validate", s.validate)
		r.Get("/validation/issues", s.issues)
		r.Post("/placeholders/validate", s.validatePlaceholders)
		r.Route("/scan", func(r chi.Router) {
			r.Post("/", s.scan)
			r.Get("/unused", s.unusedKeys)
			r.Get("/missing", s.missingKeys)
			r.Get("/references/{key}", s.keyReferences)
		})
		r.Post("/search", s.search)
		r.Get("/translation/providers", s.providers)
		r.Post("/translation/translate", s.translate)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debugw("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String())
	})
}

func (s *Server) load() ([]*resource.File, error) {
	return resource.Load(s.opts.ResourceDir, s.opts.Format)
}

// write saves files, snapshotting each one first when backups are enabled.
func (s *Server) write(files ...*resource.File) error {
	parser := resource.NewParser(s.opts.Format)
	var errs *multierror.Error
	for _, f := range files {
		if s.opts.Backups != nil {
			if _, err := s.opts.Backups.CreateBackup(f.Language.FilePath); err != nil && !errors.Is(err, backup.ErrNotFound) {
				errs = multierror.Append(errs, err)
				continue
			}
		}
		if err := parser.Write(f); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (s *Server) newScanner() (*scanner.Scanner, error) {
	return scanner.New(nil, s.opts.ScanExcludes)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnw("failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Errorw("request failed", "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// loadStatus maps resource loading failures to a status code.
func loadStatus(err error) int {
	if errors.Is(err, resource.ErrNoResources) || errors.Is(err, resource.ErrDirectoryNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func loadError(w http.ResponseWriter, err error) {
	writeError(w, loadStatus(err), err)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
