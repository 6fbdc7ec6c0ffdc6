package teams

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
)

// RegisterRoutes mounts team endpoints on the given router.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/teams", listTeamsHandler(store))
	r.Post("/api/teams", createTeamHandler(store))
	r.Get("/api/teams/{id}", getTeamHandler(store))
	r.Put("/api/teams/{id}", updateTeamHandler(store))
}

func listTeamsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := store.ListTeams(r.Context())
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Internal(err))
			return
		}
		if teams == nil {
			teams = []Team{}
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func getTeamHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Validationf("invalid team id"))
			return
		}
		team, err := store.GetTeam(r.Context(), id)
		if errors.Is(err, apperrors.ErrNotFound) {
			apperrors.WriteHTTP(w, apperrors.NotFound("Team not found"))
			return
		}
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Internal(err))
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}

func createTeamHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t Team
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			apperrors.WriteHTTP(w, apperrors.Validationf("invalid request body"))
			return
		}
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			apperrors.WriteHTTP(w, apperrors.Validationf("name is required"))
			return
		}
		if err := store.CreateTeam(r.Context(), &t); err != nil {
			apperrors.WriteHTTP(w, apperrors.Internal(err))
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

func updateTeamHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Validationf("invalid team id"))
			return
		}
		var t Team
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			apperrors.WriteHTTP(w, apperrors.Validationf("invalid request body"))
			return
		}
		t.ID = id
		err = store.UpdateTeam(r.Context(), &t)
		if errors.Is(err, apperrors.ErrNotFound) {
			apperrors.WriteHTTP(w, apperrors.NotFound("Team not found"))
			return
		}
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Internal(err))
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
