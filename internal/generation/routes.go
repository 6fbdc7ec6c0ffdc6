package generation

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
	"github.com/ziadkadry99/auto-qa/internal/artifact"
)

// maxUploadBytes bounds a multipart generation request.
const maxUploadBytes = 32 << 20

// RegisterRoutes mounts the generation endpoints. runs may be nil, in which
// case the run history endpoints are not mounted.
func RegisterRoutes(r chi.Router, svc *Service, runs *RunStore) {
	for _, k := range []struct {
		path string
		kind artifact.Kind
	}{
		{"testcases", artifact.KindTestCases},
		{"testplan", artifact.KindTestPlan},
	} {
		r.Post("/api/generate/"+k.path+"/prompt", promptHandler(svc, k.kind))
		r.Post("/api/generate/"+k.path+"/document", documentHandler(svc, k.kind))
		r.Post("/api/generate/"+k.path+"/confluence_url", confluenceHandler(svc, k.kind))
		r.Post("/api/generate/"+k.path+"/jira", jiraHandler(svc, k.kind))
	}
	r.Post("/api/autopopulate/userstory", autoPopulateHandler(svc))

	if runs != nil {
		r.Get("/api/runs", listRunsHandler(runs))
		r.Get("/api/runs/{id}", getRunHandler(runs))
	}
}

func promptHandler(svc *Service, kind artifact.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PromptRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		respond(w)(svc.FromPrompt(r.Context(), kind, req))
	}
}

func confluenceHandler(svc *Service, kind artifact.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConfluenceRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		respond(w)(svc.FromConfluence(r.Context(), kind, req))
	}
}

func jiraHandler(svc *Service, kind artifact.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JiraRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		respond(w)(svc.FromJira(r.Context(), kind, req))
	}
}

func autoPopulateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IssueKey string `json:"issue_key"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		story, err := svc.AutoPopulateStory(r.Context(), req.IssueKey)
		if err != nil {
			apperrors.WriteHTTP(w, err)
			return
		}
		writeJSON(w, http.StatusOK, story)
	}
}

func documentHandler(svc *Service, kind artifact.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			apperrors.WriteHTTP(w, apperrors.Validationf("invalid multipart form: %v", err))
			return
		}

		req := DocumentRequest{
			AppContext:  r.FormValue("app_context"),
			SectionHint: r.FormValue("section_hint"),
		}
		var err error
		if req.TeamID, err = optionalInt64(r.FormValue("team_id")); err != nil {
			apperrors.WriteHTTP(w, apperrors.Validationf("team_id must be an integer."))
			return
		}
		if req.MaxCases, err = optionalInt(r.FormValue("max_cases")); err != nil {
			apperrors.WriteHTTP(w, apperrors.Validationf("max_cases must be an integer."))
			return
		}

		for _, field := range []string{"documents", "document"} {
			for _, fh := range r.MultipartForm.File[field] {
				doc, err := readUpload(fh)
				if err != nil {
					apperrors.WriteHTTP(w, apperrors.Validationf("reading %s: %v", fh.Filename, err))
					return
				}
				req.Documents = append(req.Documents, doc)
			}
		}

		respond(w)(svc.FromDocuments(r.Context(), kind, req))
	}
}

func readUpload(fh *multipart.FileHeader) (Document, error) {
	f, err := fh.Open()
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return Document{}, err
	}
	return Document{Filename: fh.Filename, Data: data}, nil
}

func listRunsHandler(runs *RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := RunFilter{
			Kind:   artifact.Kind(q.Get("kind")),
			Status: RunStatus(q.Get("status")),
			Limit:  50,
		}
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				apperrors.WriteHTTP(w, apperrors.Validationf("limit must be a positive integer."))
				return
			}
			filter.Limit = n
		}
		if v := q.Get("offset"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				apperrors.WriteHTTP(w, apperrors.Validationf("offset must be a non-negative integer."))
				return
			}
			filter.Offset = n
		}

		list, err := runs.ListRuns(r.Context(), filter)
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Internal(err))
			return
		}
		if list == nil {
			list = []Run{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func getRunHandler(runs *RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := runs.GetRun(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, apperrors.ErrNotFound) {
			apperrors.WriteHTTP(w, apperrors.NotFound("Run not found"))
			return
		}
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Internal(err))
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

// respond writes a generation result or its error.
func respond(w http.ResponseWriter) func(*artifact.Result, error) {
	return func(res *artifact.Result, err error) {
		if err != nil {
			apperrors.WriteHTTP(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		apperrors.WriteHTTP(w, apperrors.Validationf("invalid request body"))
		return false
	}
	return true
}

func optionalInt64(v string) (*int64, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == "null" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func optionalInt(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
