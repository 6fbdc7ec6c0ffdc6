package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
	"github.com/ziadkadry99/auto-qa/internal/artifact"
	"github.com/ziadkadry99/auto-qa/internal/atlassian"
	"github.com/ziadkadry99/auto-qa/internal/db"
	"github.com/ziadkadry99/auto-qa/internal/extract"
	"github.com/ziadkadry99/auto-qa/internal/teams"
)

type recordingGenerator struct {
	artifact.Generator
	prompts []string
	metas   []artifact.Meta
	err     error
}

func (g *recordingGenerator) Generate(ctx context.Context, prompt string, meta artifact.Meta) (*artifact.Result, error) {
	g.prompts = append(g.prompts, prompt)
	g.metas = append(g.metas, meta)
	if g.err != nil {
		return nil, g.err
	}
	return g.Generator.Generate(ctx, prompt, meta)
}

func (g *recordingGenerator) lastPrompt(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, g.prompts)
	return g.prompts[len(g.prompts)-1]
}

type fakePages map[string]*atlassian.Page

func (f fakePages) PageByURL(ctx context.Context, pageURL string) (*atlassian.Page, error) {
	if p, ok := f[pageURL]; ok {
		return p, nil
	}
	return nil, atlassian.ErrPageNotFound
}

type fakeStories map[string]*atlassian.Story

func (f fakeStories) Story(ctx context.Context, key string) (*atlassian.Story, error) {
	if s, ok := f[key]; ok {
		return s, nil
	}
	return nil, atlassian.ErrIssueNotFound
}

type fixture struct {
	svc   *Service
	gen   *recordingGenerator
	runs  *RunStore
	teams *teams.Store
	r     chi.Router
}

func newFixture(t *testing.T, maxContextChars int) *fixture {
	t.Helper()
	d, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	teamStore := teams.NewStore(d)
	runs := NewRunStore(d)
	gen := &recordingGenerator{Generator: artifact.NewMock()}

	svc := NewService(Deps{
		Generator: gen,
		Resolver:  teams.NewResolver(teamStore, zap.NewNop()),
		Extractor: extract.New(zap.NewNop()),
		Pages: fakePages{
			"https://acme.atlassian.net/wiki/spaces/QA/pages/1/Login": {ID: "1", Title: "Login", Content: "Users sign in with SSO."},
			"https://acme.atlassian.net/wiki/spaces/QA/pages/2/Empty": {ID: "2", Title: "Empty", Content: "  \n "},
		},
		Stories: fakeStories{
			"QA-1": {Key: "QA-1", Summary: "Password reset", Description: "As a user I can reset my password", AcceptanceCriteria: "Link expires in 1h"},
		},
		Runs:            runs,
		Logger:          zap.NewNop(),
		MaxContextChars: maxContextChars,
		DefaultMaxCases: 8,
	})

	r := chi.NewRouter()
	RegisterRoutes(r, svc, runs)
	return &fixture{svc: svc, gen: gen, runs: runs, teams: teamStore, r: r}
}

func (f *fixture) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	f.r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data)))
	return rec
}

type upload struct {
	field, name string
	data        []byte
}

func (f *fixture) postMultipart(t *testing.T, path string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, u := range files {
		fw, err := mw.CreateFormFile(u.field, u.name)
		require.NoError(t, err)
		_, err = fw.Write(u.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPromptTestCasesEndToEnd(t *testing.T) {
	f := newFixture(t, 60000)

	rec := f.postJSON(t, "/api/generate/testcases/prompt", map[string]any{
		"user_story":  "As a user I can log in",
		"team_id":     nil,
		"app_context": "",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Contains(t, body, "test_cases")
	prompt := f.gen.lastPrompt(t)
	assert.Contains(t, prompt, "User Story:\nAs a user I can log in")
	assert.Contains(t, prompt, "Application Context:\n"+teams.GenericContext)
	assert.Contains(t, prompt, "Generate up to 8 test cases.")
	assert.Equal(t, artifact.Meta{Kind: artifact.KindTestCases}, f.gen.metas[0])
}

func TestPromptTestPlan(t *testing.T) {
	f := newFixture(t, 60000)

	rec := f.postJSON(t, "/api/generate/testplan/prompt", map[string]any{
		"feature_description": "Checkout",
		"app_context":         "E-commerce storefront",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "test_plan")
	assert.Contains(t, f.gen.lastPrompt(t), "Application Context:\nE-commerce storefront")
}

func TestPromptValidation(t *testing.T) {
	f := newFixture(t, 60000)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"no sources", map[string]any{"app_context": "web"}},
		{"blank sources", map[string]any{"user_story": "   "}},
		{"max_cases too small", map[string]any{"user_story": "x", "max_cases": 0}},
		{"max_cases too large", map[string]any{"user_story": "x", "max_cases": 51}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.postJSON(t, "/api/generate/testcases/prompt", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeBody(t, rec), "detail")
		})
	}
	assert.Empty(t, f.gen.prompts, "validation failures never reach the generator")

	rec := httptest.NewRecorder()
	f.r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate/testcases/prompt", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeamContextWins(t *testing.T) {
	f := newFixture(t, 60000)
	team := &teams.Team{Name: "payments", ContextInfo: "Card payments web app"}
	require.NoError(t, f.teams.CreateTeam(context.Background(), team))

	_, err := f.svc.FromPrompt(context.Background(), artifact.KindTestCases, PromptRequest{
		UserStory:  "Pay by card",
		AppContext: "ignored context",
		TeamID:     &team.ID,
	})
	require.NoError(t, err)
	prompt := f.gen.lastPrompt(t)
	assert.Contains(t, prompt, "Application Context:\nCard payments web app")
	assert.NotContains(t, prompt, "ignored context")

	missing := int64(999)
	_, err = f.svc.FromPrompt(context.Background(), artifact.KindTestCases, PromptRequest{
		UserStory:  "Pay by card",
		AppContext: "fallback context",
		TeamID:     &missing,
	})
	require.NoError(t, err)
	assert.Contains(t, f.gen.lastPrompt(t), "Application Context:\nfallback context")
}

func TestDocumentEmptyFileEndToEnd(t *testing.T) {
	f := newFixture(t, 60000)

	rec := f.postMultipart(t, "/api/generate/testcases/document", nil,
		upload{field: "document", name: "empty.txt", data: nil})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Could not extract text from document."}`, rec.Body.String())

	rec = f.postMultipart(t, "/api/generate/testplan/document", nil,
		upload{field: "documents", name: "broken.pdf", data: []byte("not a pdf")})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Could not extract text from document."}`, rec.Body.String())

	assert.Empty(t, f.gen.prompts)
}

func TestDocumentsCombinedWithSectionHint(t *testing.T) {
	f := newFixture(t, 60000)

	rec := f.postMultipart(t, "/api/generate/testcases/document",
		map[string]string{"section_hint": "Focus on login", "max_cases": "3", "app_context": "Banking app"},
		upload{field: "documents", name: "a.txt", data: []byte("first doc")},
		upload{field: "documents", name: "blank.txt", data: []byte("   ")},
		upload{field: "documents", name: "b.md", data: []byte("second doc")},
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decodeBody(t, rec), "test_cases")

	prompt := f.gen.lastPrompt(t)
	assert.Contains(t, prompt, "Document Extracts:\nFocus on login\n\nfirst doc\n\nsecond doc")
	assert.Contains(t, prompt, "Generate up to 3 test cases.")
	assert.Equal(t, artifact.SourceDocument, f.gen.metas[0].Source)
}

func TestDocumentRequirementTextIsTruncated(t *testing.T) {
	f := newFixture(t, 60)

	_, err := f.svc.FromDocuments(context.Background(), artifact.KindTestPlan, DocumentRequest{
		AppContext: "Short",
		Documents:  []Document{{Filename: "long.txt", Data: []byte(strings.Repeat("a", 100) + "TAIL")}},
	})
	require.NoError(t, err)
	prompt := f.gen.lastPrompt(t)
	assert.Contains(t, prompt, "Application Context:\nShort\n\nDocument Extracts:\naaa")
	assert.NotContains(t, prompt, "TAIL")

	want := "Application Context:\nShort\n\nDocument Extracts:\n" + strings.Repeat("a", 60-len("Application Context:\nShort\n\nDocument Extracts:\n"))
	assert.Contains(t, prompt, want+"\n")
}

func TestDocumentValidation(t *testing.T) {
	f := newFixture(t, 60000)

	rec := f.postMultipart(t, "/api/generate/testcases/document", map[string]string{"app_context": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.postMultipart(t, "/api/generate/testcases/document", map[string]string{"team_id": "abc"},
		upload{field: "document", name: "a.txt", data: []byte("text")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.postJSON(t, "/api/generate/testcases/document", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfluence(t *testing.T) {
	f := newFixture(t, 60000)

	rec := f.postJSON(t, "/api/generate/testplan/confluence_url", map[string]any{
		"confluence_url": "https://acme.atlassian.net/wiki/spaces/QA/pages/1/Login",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decodeBody(t, rec), "test_plan")
	assert.Contains(t, f.gen.lastPrompt(t), "Users sign in with SSO.")
	assert.Equal(t, artifact.Meta{Kind: artifact.KindTestPlan, Source: artifact.SourceConfluence}, f.gen.metas[0])

	rec = f.postJSON(t, "/api/generate/testplan/confluence_url", map[string]any{
		"confluence_url": "https://acme.atlassian.net/wiki/spaces/QA/pages/2/Empty",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Could not extract text from Confluence page."}`, rec.Body.String())

	rec = f.postJSON(t, "/api/generate/testcases/confluence_url", map[string]any{
		"confluence_url": "https://acme.atlassian.net/wiki/spaces/QA/pages/3/Gone",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Page not found"}`, rec.Body.String())

	rec = f.postJSON(t, "/api/generate/testcases/confluence_url", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfluenceNotConfigured(t *testing.T) {
	svc := NewService(Deps{
		Generator: artifact.NewMock(),
		Resolver:  teams.NewResolver(nil, zap.NewNop()),
	})
	_, err := svc.FromConfluence(context.Background(), artifact.KindTestPlan, ConfluenceRequest{URL: "https://x/pages/1/"})
	assert.Equal(t, apperrors.KindUpstreamLookup, apperrors.KindOf(err))
	assert.ErrorIs(t, err, atlassian.ErrNotConfigured)
}

func TestJira(t *testing.T) {
	f := newFixture(t, 60000)

	rec := f.postJSON(t, "/api/generate/testcases/jira", map[string]any{"issue_key": "QA-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	prompt := f.gen.lastPrompt(t)
	assert.Contains(t, prompt, "Feature Description:\nPassword reset\n\nUser Story:\nAs a user I can reset my password\n\nAcceptance Criteria:\nLink expires in 1h")
	assert.Equal(t, artifact.SourceJira, f.gen.metas[0].Source)

	rec = f.postJSON(t, "/api/generate/testcases/jira", map[string]any{"issue_key": "QA-404"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.postJSON(t, "/api/autopopulate/userstory", map[string]any{"issue_key": "QA-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Link expires in 1h", decodeBody(t, rec)["acceptance_criteria"])

	rec = f.postJSON(t, "/api/autopopulate/userstory", map[string]any{"issue_key": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratorFailureIsBadGateway(t *testing.T) {
	f := newFixture(t, 60000)
	f.gen.err = fmt.Errorf("%w: quota exceeded", artifact.ErrGeneration)

	rec := f.postJSON(t, "/api/generate/testcases/prompt", map[string]any{"user_story": "x"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "artifact generation failed: quota exceeded", decodeBody(t, rec)["error"])
}

func TestRunsAreRecorded(t *testing.T) {
	f := newFixture(t, 60000)
	ctx := context.Background()

	_, err := f.svc.FromPrompt(ctx, artifact.KindTestCases, PromptRequest{UserStory: "x"})
	require.NoError(t, err)
	_, err = f.svc.FromPrompt(ctx, artifact.KindTestPlan, PromptRequest{})
	require.Error(t, err)

	runs, err := f.runs.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byStatus := map[RunStatus]Run{}
	for _, r := range runs {
		byStatus[r.Status] = r
	}
	ok := byStatus[RunSucceeded]
	assert.Equal(t, artifact.KindTestCases, ok.Kind)
	assert.Equal(t, "prompt", ok.Source)
	assert.Equal(t, "mock", ok.Provider)
	assert.Positive(t, ok.PromptChars)

	failed := byStatus[RunFailed]
	assert.Equal(t, string(apperrors.KindValidation), failed.ErrorKind)

	rec := httptest.NewRecorder()
	f.r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs?status=failed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	rec = httptest.NewRecorder()
	f.r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+ok.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	f.r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingResolver struct{}

func (failingResolver) ResolveContext(ctx context.Context, teamID *int64, userContext string) (string, error) {
	return "", fmt.Errorf("team lookup: database is closed")
}

func TestResolverFailureIsInternal(t *testing.T) {
	gen := &recordingGenerator{Generator: artifact.NewMock()}
	svc := NewService(Deps{
		Generator: gen,
		Resolver:  failingResolver{},
		Extractor: extract.New(zap.NewNop()),
		Logger:    zap.NewNop(),
	})

	team := int64(1)
	_, err := svc.FromPrompt(context.Background(), artifact.KindTestCases, PromptRequest{UserStory: "As a user I log in", TeamID: &team})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.Empty(t, gen.prompts)
}
