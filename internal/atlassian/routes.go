package atlassian

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
)

// RegisterRoutes mounts the Jira test listing endpoint.
func RegisterRoutes(r chi.Router, jira *Jira) {
	r.Get("/api/jira/testcases/{projectKey}", listTestsHandler(jira))
}

func listTestsHandler(jira *Jira) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := TestFilter{
			Status:   q.Get("status"),
			Assignee: q.Get("assignee"),
		}

		var err error
		if v := q.Get("start_at"); v != "" {
			if f.StartAt, err = strconv.Atoi(v); err != nil || f.StartAt < 0 {
				apperrors.WriteHTTP(w, apperrors.Validationf("start_at must be a non-negative integer"))
				return
			}
		}
		if v := q.Get("max_results"); v != "" {
			if f.MaxResults, err = strconv.Atoi(v); err != nil || f.MaxResults < 1 {
				apperrors.WriteHTTP(w, apperrors.Validationf("max_results must be a positive integer"))
				return
			}
		}

		page, err := jira.SearchTests(r.Context(), chi.URLParam(r, "projectKey"), f)
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.UpstreamLookup(err))
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
