package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
	"github.com/ziadkadry99/auto-qa/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func ptr(id int64) *int64 { return &id }

func TestStoreCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	team := &Team{Name: "payments", ContextInfo: "Card payments web app", TechStack: "Go, React"}
	require.NoError(t, store.CreateTeam(ctx, team))
	assert.NotZero(t, team.ID)

	got, err := store.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Card payments web app", got.ContextInfo)

	byName, err := store.GetTeamByName(ctx, "payments")
	require.NoError(t, err)
	assert.Equal(t, team.ID, byName.ID)

	got.ContextInfo = "Card and wallet payments"
	require.NoError(t, store.UpdateTeam(ctx, got))

	list, err := store.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Card and wallet payments", list[0].ContextInfo)

	_, err = store.GetTeam(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, store.UpdateTeam(ctx, &Team{ID: 999, Name: "x"}), apperrors.ErrNotFound)
}

func TestResolveContextPrecedence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	r := NewResolver(store, zap.NewNop())

	withCtx := &Team{Name: "mobile", ContextInfo: "iOS and Android banking app"}
	require.NoError(t, store.CreateTeam(ctx, withCtx))
	blank := &Team{Name: "blank"}
	require.NoError(t, store.CreateTeam(ctx, blank))

	tests := []struct {
		name        string
		teamID      *int64
		userContext string
		want        string
	}{
		{"team wins over user context", ptr(withCtx.ID), "ignored", "iOS and Android banking app"},
		{"team without context uses generic", ptr(blank.ID), "ignored", GenericContext},
		{"unknown team falls back to user context", ptr(12345), "Internal CRM", "Internal CRM"},
		{"no team uses user context", nil, "Internal CRM", "Internal CRM"},
		{"nothing uses generic", nil, "", GenericContext},
		{"whitespace user context uses generic", nil, "   ", GenericContext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveContext(ctx, tt.teamID, tt.userContext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveContextIsStable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	team := &Team{Name: "web", ContextInfo: "Storefront"}
	require.NoError(t, store.CreateTeam(ctx, team))

	r := NewResolver(store, zap.NewNop())
	first, err := r.ResolveContext(ctx, ptr(team.ID), "x")
	require.NoError(t, err)
	second, err := r.ResolveContext(ctx, ptr(team.ID), "x")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRoutes(t *testing.T) {
	store := newTestStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)

	body, _ := json.Marshal(map[string]string{"name": "qa-core", "context_info": "Shared QA tooling"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/teams", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Team
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "qa-core", created.Name)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Team
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams/4242", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/teams", bytes.NewReader([]byte(`{"name":"  "}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type brokenGetter struct{}

func (brokenGetter) GetTeam(ctx context.Context, id int64) (*Team, error) {
	return nil, errors.New("disk I/O error")
}

func TestResolveContextSurfacesLookupFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewResolver(brokenGetter{}, zap.New(core))

	_, err := r.ResolveContext(context.Background(), ptr(1), "Internal CRM")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.Equal(t, 1, logs.FilterMessage("team lookup failed").Len())

	got, err := r.ResolveContext(context.Background(), nil, "Internal CRM")
	require.NoError(t, err)
	assert.Equal(t, "Internal CRM", got)
}
