package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/valpere/lrm/internal/resource"
	"github.com/valpere/lrm/internal/scanner"
)

type UnusedKeysResponse struct {
	UnusedKeys []string `json:"unusedKeys"`
}

type MissingKeysResponse struct {
	MissingKeys []string `json:"missingKeys"`
}

type KeyReferencesResponse struct {
	Key            string              `json:"key"`
	ReferenceCount int                 `json:"referenceCount"`
	References     []scanner.Reference `json:"references"`
}

// runScan scans the source directory against the current default file.
func (s *Server) runScan(r *http.Request) (*scanner.Result, int, error) {
	files, err := s.load()
	if err != nil {
		return nil, loadStatus(err), err
	}
	sc, err := s.newScanner()
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	res, err := sc.Scan(r.Context(), s.opts.SourceDir, resource.DefaultFile(files))
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return res, http.StatusOK, nil
}

func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	res, status, err := s.runScan(r)
	if err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) unusedKeys(w http.ResponseWriter, r *http.Request) {
	res, status, err := s.runScan(r)
	if err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, UnusedKeysResponse{UnusedKeys: res.UnusedKeys})
}

func (s *Server) missingKeys(w http.ResponseWriter, r *http.Request) {
	res, status, err := s.runScan(r)
	if err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, MissingKeysResponse{MissingKeys: res.MissingKeys})
}

func (s *Server) keyReferences(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	res, status, err := s.runScan(r)
	if err != nil {
		writeError(w, status, err)
		return
	}
	usage, ok := res.Usage(key)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no references found for key '%s'", key))
		return
	}
	writeJSON(w, http.StatusOK, KeyReferencesResponse{
		Key:            usage.Key,
		ReferenceCount: len(usage.References),
		References:     usage.References,
	})
}
