package api

import (
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"github.com/valpere/lrm/internal/filter"
	"github.com/valpere/lrm/internal/validator"
)

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var c filter.Criteria
	if err := decode(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	mode, err := filter.ParseMode(string(c.Mode))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	scope, err := filter.ParseScope(string(c.Scope))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c.Mode, c.Scope = mode, scope

	files, err := s.load()
	if err != nil {
		loadError(w, err)
		return
	}
	infos := filter.BuildKeyInfos(files, validator.New().Validate(files))
	if lo.Contains(c.Statuses, filter.StatusUnused) {
		res, status, err := s.runScan(r)
		if err != nil {
			writeError(w, status, err)
			return
		}
		filter.MarkUnused(infos, res.UnusedKeys)
	}

	writeJSON(w, http.StatusOK, s.filter.FilterKeys(infos, c))
}
