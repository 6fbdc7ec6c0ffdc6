package assistant

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
)

// RegisterRoutes mounts the assistant HTTP endpoints.
func RegisterRoutes(r chi.Router, a *Assistant) {
	r.Post("/api/qa-assistant", askHandler(a))
	r.Post("/api/qa-feedback", feedbackHandler(a))
	r.Get("/api/qa-queries", listQueriesHandler(a))
}

// RegisterSocket mounts the chat websocket. Mount it outside any request
// timeout middleware.
func RegisterSocket(r chi.Router, a *Assistant) {
	r.Get("/ws/assistant", a.handleWebSocket)
}

func askHandler(a *Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteHTTP(w, apperrors.Validationf("invalid request body"))
			return
		}
		ans, err := a.Ask(r.Context(), req)
		if err != nil {
			apperrors.WriteHTTP(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ans)
	}
}

func feedbackHandler(a *Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FeedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteHTTP(w, apperrors.Validationf("invalid request body"))
			return
		}
		if err := a.Feedback(r.Context(), req); err != nil {
			apperrors.WriteHTTP(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Feedback recorded successfully"})
	}
}

func listQueriesHandler(a *Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := QueryFilter{Limit: 50}
		if v := r.URL.Query().Get("team_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				apperrors.WriteHTTP(w, apperrors.Validationf("invalid team_id"))
				return
			}
			f.TeamID = &id
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				apperrors.WriteHTTP(w, apperrors.Validationf("limit must be a positive integer."))
				return
			}
			f.Limit = n
		}

		queries, err := a.Queries(r.Context(), f)
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Internal(err))
			return
		}
		if queries == nil {
			queries = []Query{}
		}
		writeJSON(w, http.StatusOK, queries)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
