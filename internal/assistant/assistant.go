// Package assistant answers QA questions from the knowledge base through
// the configured generator and keeps a record of every answer.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
	"github.com/ziadkadry99/auto-qa/internal/artifact"
	"github.com/ziadkadry99/auto-qa/internal/knowledge"
	"github.com/ziadkadry99/auto-qa/internal/metrics"
	"github.com/ziadkadry99/auto-qa/internal/teams"
)

const (
	chatTemperature = 0.3
	relatedLimit    = 3
	minRating       = 1
	maxRating       = 5
)

// KnowledgeSource finds knowledge for a question.
type KnowledgeSource interface {
	Retrieve(ctx context.Context, question string, teamID *int64) (knowledge.Context, error)
	Related(ctx context.Context, question string, teamID *int64, limit int) ([]knowledge.Entry, error)
}

// UsageCounter records which entries were quoted to the generator.
type UsageCounter interface {
	IncrementUsage(ctx context.Context, ids []int64) error
}

// TeamGetter looks up a team's descriptive fields.
type TeamGetter interface {
	GetTeam(ctx context.Context, id int64) (*teams.Team, error)
}

// Assistant orchestrates one question: retrieval, prompt assembly, the chat
// call and the query record.
type Assistant struct {
	generator artifact.Generator
	knowledge KnowledgeSource
	usage     UsageCounter
	teams     TeamGetter
	queries   *QueryStore
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// New creates an assistant. usage and m may be nil.
func New(gen artifact.Generator, ks KnowledgeSource, usage UsageCounter, tg TeamGetter, queries *QueryStore, m *metrics.Metrics, logger *zap.Logger) *Assistant {
	return &Assistant{
		generator: gen,
		knowledge: ks,
		usage:     usage,
		teams:     tg,
		queries:   queries,
		metrics:   m,
		logger:    logger.Named("assistant"),
	}
}

// Ask answers a question. The query is persisted only once the generator
// has answered, so a failed call leaves no record.
func (a *Assistant) Ask(ctx context.Context, req AskRequest) (ans *Answer, err error) {
	defer func() { a.metrics.ObserveAssistant(err) }()

	if strings.TrimSpace(req.Question) == "" {
		return nil, apperrors.Validationf("question is required.")
	}
	start := time.Now()

	kc, err := a.knowledge.Retrieve(ctx, req.Question, req.TeamID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	team, err := a.team(ctx, req.TeamID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	system := buildSystemPrompt(team, kc, req.UserContext)
	response, err := a.generator.ChatCompletion(ctx, system, req.Question, chatTemperature)
	if err != nil {
		return nil, apperrors.UpstreamGeneration(err)
	}

	related, err := a.knowledge.Related(ctx, req.Question, req.TeamID, relatedLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	q := &Query{
		Question:     req.Question,
		Response:     response,
		ResponseTime: time.Since(start).Seconds(),
	}
	if team != nil {
		q.TeamID = &team.ID
	}
	if err := a.queries.CreateQuery(ctx, q); err != nil {
		return nil, apperrors.Internal(err)
	}

	a.countUsage(ctx, kc.Entries())

	docs := make([]knowledge.Summary, 0, len(related))
	for _, e := range related {
		docs = append(docs, e.Summary())
	}

	a.logger.Debug("answered question",
		zap.Int64("query_id", q.ID),
		zap.Int("knowledge_entries", len(kc.Entries())),
		zap.Float64("response_time", q.ResponseTime),
	)

	return &Answer{
		QueryID:            q.ID,
		Response:           response,
		SuggestedFollowups: SuggestFollowups(req.Question),
		RelatedDocs:        docs,
		ResponseTime:       q.ResponseTime,
	}, nil
}

// team resolves the requesting team. A missing team is not an error.
func (a *Assistant) team(ctx context.Context, teamID *int64) (*teams.Team, error) {
	if teamID == nil || a.teams == nil {
		return nil, nil
	}
	team, err := a.teams.GetTeam(ctx, *teamID)
	if errors.Is(err, apperrors.ErrNotFound) {
		a.logger.Debug("team not found, omitting project info", zap.Int64("team_id", *teamID))
		return nil, nil
	}
	return team, err
}

func (a *Assistant) countUsage(ctx context.Context, entries []knowledge.Entry) {
	if a.usage == nil || len(entries) == 0 {
		return
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := a.usage.IncrementUsage(ctx, ids); err != nil {
		a.logger.Warn("incrementing knowledge usage", zap.Error(err))
	}
}

// Feedback rates a previous answer once.
func (a *Assistant) Feedback(ctx context.Context, req FeedbackRequest) error {
	if req.QueryID == 0 {
		return apperrors.Validationf("queryId is required.")
	}
	if _, err := a.queries.GetQuery(ctx, req.QueryID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("Query not found")
		}
		return apperrors.Internal(err)
	}
	if req.Rating < minRating || req.Rating > maxRating {
		return apperrors.Validationf("rating must be between %d and %d.", minRating, maxRating)
	}

	err := a.queries.RecordFeedback(ctx, req.QueryID, req.Rating, req.Comments)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrFeedbackRecorded):
		return apperrors.Validationf("Feedback already recorded for this query.")
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.NotFound("Query not found")
	default:
		return apperrors.Internal(err)
	}
}

// Queries lists recorded queries.
func (a *Assistant) Queries(ctx context.Context, f QueryFilter) ([]Query, error) {
	return a.queries.ListQueries(ctx, f)
}
