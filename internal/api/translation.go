package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"github.com/valpere/lrm/internal/autotranslate"
	"github.com/valpere/lrm/internal/translator"
)

type ProviderStatus struct {
	translator.ProviderInfo
	Configured bool `json:"configured"`
}

type ProvidersResponse struct {
	Providers []ProviderStatus `json:"providers"`
}

type TranslateRequest struct {
	Keys            []string `json:"keys,omitempty"`
	TargetLanguages []string `json:"targetLanguages,omitempty"`
	OnlyMissing     bool     `json:"onlyMissing"`
	Overwrite       bool     `json:"overwrite"`
	DryRun          bool     `json:"dryRun"`
}

func (s *Server) providers(w http.ResponseWriter, r *http.Request) {
	configured := lo.Map(s.opts.Services, func(svc translator.TranslationService, _ int) string { return svc.Name() })
	out := lo.Map(translator.Providers(), func(p translator.ProviderInfo, _ int) ProviderStatus {
		return ProviderStatus{ProviderInfo: p, Configured: lo.Contains(configured, p.Name)}
	})
	writeJSON(w, http.StatusOK, ProvidersResponse{Providers: out})
}

func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(s.opts.Services) == 0 {
		writeError(w, http.StatusServiceUnavailable, autotranslate.ErrNoServices)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.load()
	if err != nil {
		loadError(w, err)
		return
	}

	p := &autotranslate.Pipeline{
		Services:   s.opts.Services,
		Store:      s.opts.Store,
		Config:     s.opts.ServiceConfig,
		SourceLang: s.opts.SourceLang,
		Arbiter:    s.opts.Arbiter,
	}
	report, err := p.Run(r.Context(), files, autotranslate.Options{
		Keys:            req.Keys,
		OnlyMissing:     req.OnlyMissing,
		TargetLanguages: req.TargetLanguages,
		DryRun:          req.DryRun,
		Overwrite:       req.Overwrite,
	})
	switch {
	case errors.Is(err, autotranslate.ErrNoDefault):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := s.write(report.Modified...); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
