package httpfront

import (
	"net/http"

	"github.com/harborlabs/boost/internal/boost/mapper"
	"github.com/harborlabs/boost/internal/boost/modules"
	"github.com/harborlabs/boost/internal/boost/selection"
	"github.com/harborlabs/boost/internal/httputil"
	"github.com/harborlabs/boost/internal/logging"
)

// modelEntry is one `/v1/models` catalog row.
type modelEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// asFilterRow flattens an entry for selection.MatchesFilter, which only
// operates on flat string-keyed maps.
func (e modelEntry) asFilterRow() map[string]string {
	return map[string]string{"id": e.ID, "name": e.Name, "object": e.Object, "owned_by": e.OwnedBy}
}

// handleListModels lists the cross-product of enabled modules x downstream
// models (plus base models if configured), filtered by HARBOR_BOOST_MODEL_FILTER.
func (f *Front) handleListModels(w http.ResponseWriter, r *http.Request) {
	downstream := f.mapper.ListDownstream(r.Context())

	enabled := map[string]bool{}
	all := len(f.cfg.Modules) == 1 && f.cfg.Modules[0] == "all"
	if !all {
		for _, n := range f.cfg.Modules {
			enabled[n] = true
		}
	}

	var entries []modelEntry
	for _, name := range modules.List() {
		if !all && !enabled[name] {
			continue
		}
		mod, ok := modules.Get(name)
		if !ok {
			continue
		}
		for _, d := range downstream {
			pm := mapper.GetProxyModel(mod.IDPrefix(), d.ID)
			entries = append(entries, modelEntry{ID: pm.ID, Name: pm.Name, Object: "model", OwnedBy: d.Backend.Name})
		}
	}

	if f.cfg.BaseModels {
		for _, d := range downstream {
			entries = append(entries, modelEntry{ID: d.ID, Name: d.ID, Object: "model", OwnedBy: d.Backend.Name})
		}
	}

	clauses := f.modelFilterClauses(r)
	if len(clauses) > 0 {
		filtered := entries[:0:0]
		for _, e := range entries {
			if selection.MatchesFilter(e.asFilterRow(), clauses) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	httputil.OkJSON(w, map[string]any{"object": "list", "data": entries})
}

// modelFilterClauses combines the inline HARBOR_BOOST_MODEL_FILTER clauses
// with any parsed from HARBOR_BOOST_MODEL_FILTER_FILE. A file that fails to
// load is logged and otherwise ignored, leaving the inline clauses in effect.
func (f *Front) modelFilterClauses(r *http.Request) []selection.Clause {
	var clauses []selection.Clause
	if f.cfg.ModelFilter != "" {
		clauses = append(clauses, selection.ParseFilter(f.cfg.ModelFilter)...)
	}
	if f.cfg.ModelFilterFile != "" {
		fromFile, err := selection.LoadFilterFile(f.cfg.ModelFilterFile)
		if err != nil {
			logging.WithContext(r.Context()).Warnf("httpfront: model filter file: %v", err)
		} else {
			clauses = append(clauses, fromFile...)
		}
	}
	return clauses
}
