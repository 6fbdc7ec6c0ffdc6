package knowledge

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
	"github.com/ziadkadry99/auto-qa/internal/db"
)

// RegisterRoutes mounts the knowledge base endpoints.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/knowledgebase", listHandler(store))
	r.Post("/api/knowledgebase", createHandler(store))
	r.Get("/api/knowledgebase/{id}", getHandler(store))
}

func listHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f Filter
		if c := r.URL.Query().Get("category"); c != "" {
			f.Category = Category(c)
			if !f.Category.Valid() {
				apperrors.WriteHTTP(w, apperrors.Validationf("unknown category %q", c))
				return
			}
		}
		if v := r.URL.Query().Get("team_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				apperrors.WriteHTTP(w, apperrors.Validationf("invalid team_id"))
				return
			}
			f.TeamID = &id
		}

		entries, err := store.List(r.Context(), f)
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Internal(err))
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func getHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Validationf("invalid entry id"))
			return
		}
		entry, err := store.Get(r.Context(), id)
		if errors.Is(err, apperrors.ErrNotFound) {
			apperrors.WriteHTTP(w, apperrors.NotFound("Knowledge entry not found"))
			return
		}
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Internal(err))
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func createHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e Entry
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			apperrors.WriteHTTP(w, apperrors.Validationf("invalid request body"))
			return
		}
		e.Title = strings.TrimSpace(e.Title)
		if e.Title == "" || strings.TrimSpace(e.Content) == "" {
			apperrors.WriteHTTP(w, apperrors.Validationf("title and content are required"))
			return
		}
		if e.Category == "" {
			e.Category = CategoryUniversal
		}
		if !e.Category.Valid() {
			apperrors.WriteHTTP(w, apperrors.Validationf("unknown category %q", e.Category))
			return
		}
		e.ID = 0
		e.UsageCount = 0
		e.SourcePath = ""

		if err := store.Create(r.Context(), &e); err != nil {
			if db.IsForeignKeyViolation(err) {
				apperrors.WriteHTTP(w, apperrors.Validationf("unknown team_id %d", *e.TeamID))
				return
			}
			apperrors.WriteHTTP(w, apperrors.Internal(err))
			return
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
