package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/valpere/lrm/internal/resource"
)

type LanguageInfo struct {
	Code           string  `json:"code"`
	IsDefault      bool    `json:"isDefault"`
	Name           string  `json:"name"`
	FilePath       string  `json:"filePath"`
	DisplayName    string  `json:"displayName"`
	TotalKeys      int     `json:"totalKeys"`
	TranslatedKeys int     `json:"translatedKeys"`
	Coverage       float64 `json:"coverage"`
}

type LanguagesResponse struct {
	Languages []LanguageInfo `json:"languages"`
}

type AddLanguageRequest struct {
	CultureCode string `json:"cultureCode"`
	CopyFrom    string `json:"copyFrom,omitempty"`
	Empty       bool   `json:"empty"`
}

type AddLanguageResponse struct {
	Success     bool   `json:"success"`
	CultureCode string `json:"cultureCode"`
	FileName    string `json:"fileName"`
	FilePath    string `json:"filePath"`
	DisplayName string `json:"displayName"`
}

type RemoveLanguageResponse struct {
	Success     bool   `json:"success"`
	CultureCode string `json:"cultureCode"`
	FileName    string `json:"fileName"`
	Message     string `json:"message"`
}

// LanguageInfos summarises files with coverage measured against the number
// of keys in the default file.
func LanguageInfos(files []*resource.File) []LanguageInfo {
	total := 0
	if def := resource.DefaultFile(files); def != nil {
		total = len(def.Keys())
	}
	return lo.Map(files, func(f *resource.File, _ int) LanguageInfo {
		translated := f.CompletedCount()
		coverage := 0.0
		if total > 0 {
			coverage = float64(min(translated, total)) / float64(total) * 100
		}
		return LanguageInfo{
			Code:           f.Language.Code,
			IsDefault:      f.Language.IsDefault,
			Name:           f.Language.Name,
			FilePath:       f.Language.FilePath,
			DisplayName:    f.Language.DisplayName(),
			TotalKeys:      f.Count(),
			TranslatedKeys: translated,
			Coverage:       coverage,
		}
	})
}

func (s *Server) listLanguages(w http.ResponseWriter, r *http.Request) {
	files, err := s.load()
	if err != nil {
		loadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LanguagesResponse{Languages: LanguageInfos(files)})
}

func (s *Server) addLanguage(w http.ResponseWriter, r *http.Request) {
	var req AddLanguageRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	req.CultureCode = strings.TrimSpace(req.CultureCode)
	if !resource.IsValidCultureCode(req.CultureCode) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid culture code: %s", req.CultureCode))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.load()
	if err != nil {
		loadError(w, err)
		return
	}
	def := resource.DefaultFile(files)
	if def == nil {
		writeError(w, http.StatusNotFound, errors.New("no default language file"))
		return
	}

	source := def
	if req.CopyFrom != "" {
		source = resource.FindFile(files, req.CopyFrom)
		if source == nil {
			writeError(w, http.StatusNotFound, fmt.Errorf("language '%s' not found", req.CopyFrom))
			return
		}
	}

	file, err := resource.NewLanguageFile(s.opts.Format, s.opts.ResourceDir, def.Language.BaseName, req.CultureCode, source, !req.Empty && req.CopyFrom != "")
	switch {
	case errors.Is(err, resource.ErrLanguageExists):
		writeError(w, http.StatusConflict, fmt.Errorf("language file for '%s' already exists", req.CultureCode))
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := resource.NewParser(s.opts.Format).Write(file); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	log.Infow("language added", "code", req.CultureCode, "file", file.Language.FilePath)
	writeJSON(w, http.StatusOK, AddLanguageResponse{
		Success:     true,
		CultureCode: req.CultureCode,
		FileName:    file.Language.Name,
		FilePath:    file.Language.FilePath,
		DisplayName: resource.DisplayName(req.CultureCode),
	})
}

func (s *Server) removeLanguage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.load()
	if err != nil {
		loadError(w, err)
		return
	}
	if strings.EqualFold(code, "default") {
		writeError(w, http.StatusBadRequest, errors.New("cannot delete the default language file"))
		return
	}
	file := resource.FindFile(files, code)
	if file == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("language '%s' not found", code))
		return
	}

	if s.opts.Backups != nil {
		if _, err := s.opts.Backups.CreateBackup(file.Language.FilePath); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	if err := resource.DeleteLanguageFile(file.Language); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	log.Infow("language removed", "code", code, "file", file.Language.FilePath)
	writeJSON(w, http.StatusOK, RemoveLanguageResponse{
		Success:     true,
		CultureCode: file.Language.Code,
		FileName:    file.Language.Name,
		Message:     fmt.Sprintf("Language '%s' removed", file.Language.Code),
	})
}
