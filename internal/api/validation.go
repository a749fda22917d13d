package api

import (
	"fmt"
	"net/http"

	"github.com/valpere/lrm/internal/placeholder"
	"github.com/valpere/lrm/internal/validator"
)

type ValidateRequest struct {
	EnabledPlaceholderTypes []string `json:"enabledPlaceholderTypes,omitempty"`
}

// ValidationResponse reduces placeholder mismatches to key lists per
// language.
type ValidationResponse struct {
	IsValid               bool                `json:"isValid"`
	MissingKeys           map[string][]string `json:"missingKeys"`
	DuplicateKeys         map[string][]string `json:"duplicateKeys"`
	EmptyValues           map[string][]string `json:"emptyValues"`
	ExtraKeys             map[string][]string `json:"extraKeys"`
	PlaceholderMismatches map[string][]string `json:"placeholderMismatches"`
	Summary               validator.Summary   `json:"summary"`
}

func NewValidationResponse(res *validator.Result) ValidationResponse {
	return ValidationResponse{
		IsValid:               res.IsValid(),
		MissingKeys:           res.MissingKeys,
		DuplicateKeys:         res.DuplicateKeys,
		EmptyValues:           res.EmptyValues,
		ExtraKeys:             res.ExtraKeys,
		PlaceholderMismatches: res.PlaceholderKeys(),
		Summary:               res.Summary(),
	}
}

type PlaceholderCheckRequest struct {
	Source                  string   `json:"source"`
	Translation             string   `json:"translation"`
	EnabledPlaceholderTypes []string `json:"enabledPlaceholderTypes,omitempty"`
}

type PlaceholderCheckResponse struct {
	placeholder.ValidationResult
	Summary string `json:"summary"`
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	types, err := placeholder.ParseTypeSet(req.EnabledPlaceholderTypes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	files, err := s.load()
	if err != nil {
		loadError(w, err)
		return
	}
	res := validator.New(validator.WithPlaceholderTypes(types)).Validate(files)
	writeJSON(w, http.StatusOK, NewValidationResponse(res))
}

func (s *Server) issues(w http.ResponseWriter, r *http.Request) {
	files, err := s.load()
	if err != nil {
		loadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validator.New().Validate(files).Summary())
}

func (s *Server) validatePlaceholders(w http.ResponseWriter, r *http.Request) {
	var req PlaceholderCheckRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	types, err := placeholder.ParseTypeSet(req.EnabledPlaceholderTypes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	v := placeholder.NewValidator(placeholder.NewDetector(placeholder.WithTypeSet(types)))
	res := v.Validate(req.Source, req.Translation)
	writeJSON(w, http.StatusOK, PlaceholderCheckResponse{ValidationResult: res, Summary: res.Summary()})
}
