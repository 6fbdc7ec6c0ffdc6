// Package generation turns requirement sources into test artifacts through
// the configured generator.
package generation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
	"github.com/ziadkadry99/auto-qa/internal/artifact"
	"github.com/ziadkadry99/auto-qa/internal/atlassian"
	"github.com/ziadkadry99/auto-qa/internal/config"
	"github.com/ziadkadry99/auto-qa/internal/metrics"
	"github.com/ziadkadry99/auto-qa/internal/prompts"
)

const (
	msgNoDocumentText   = "Could not extract text from document."
	msgNoConfluenceText = "Could not extract text from Confluence page."
	msgNoJiraText       = "Could not extract text from Jira issue."
)

// ContextResolver picks the application context for a request.
type ContextResolver interface {
	ResolveContext(ctx context.Context, teamID *int64, userContext string) (string, error)
}

// TextExtractor returns best-effort plain text for an uploaded file.
type TextExtractor interface {
	Extract(filename string, data []byte) string
}

// PageSource resolves Confluence page URLs.
type PageSource interface {
	PageByURL(ctx context.Context, pageURL string) (*atlassian.Page, error)
}

// StorySource resolves Jira issue keys.
type StorySource interface {
	Story(ctx context.Context, key string) (*atlassian.Story, error)
}

// Deps are the collaborators of a Service. Pages, Stories, Runs and
// Metrics may be nil.
type Deps struct {
	Generator       artifact.Generator
	Resolver        ContextResolver
	Extractor       TextExtractor
	Pages           PageSource
	Stories         StorySource
	Runs            RunRecorder
	Metrics         *metrics.Metrics
	Logger          *zap.Logger
	MaxContextChars int
	DefaultMaxCases int
}

// Service is the generation orchestrator. It holds no per-request state and
// is safe for concurrent use when its collaborators are.
type Service struct {
	generator       artifact.Generator
	resolver        ContextResolver
	extractor       TextExtractor
	pages           PageSource
	stories         StorySource
	runs            RunRecorder
	metrics         *metrics.Metrics
	logger          *zap.Logger
	maxContextChars int
	defaultMaxCases int
}

// NewService creates a generation service.
func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if d.MaxContextChars <= 0 {
		d.MaxContextChars = config.DefaultConfig().Generation.MaxContextChars
	}
	if d.DefaultMaxCases <= 0 {
		d.DefaultMaxCases = config.DefaultConfig().Generation.DefaultMaxCases
	}
	return &Service{
		generator:       d.Generator,
		resolver:        d.Resolver,
		extractor:       d.Extractor,
		pages:           d.Pages,
		stories:         d.Stories,
		runs:            d.Runs,
		metrics:         d.Metrics,
		logger:          logger.Named("generation"),
		maxContextChars: d.MaxContextChars,
		defaultMaxCases: d.DefaultMaxCases,
	}
}

// job is one generation request on its way to the generator.
type job struct {
	kind        artifact.Kind
	source      artifact.Source
	teamID      *int64
	userContext string
	requirement prompts.Requirement
	// truncate applies the overall context limit to the requirement text.
	truncate bool
	maxCases int
}

// FromPrompt generates from free-text fields. At least one of the user
// story, acceptance criteria and feature description must be non-blank.
func (s *Service) FromPrompt(ctx context.Context, kind artifact.Kind, req PromptRequest) (res *artifact.Result, err error) {
	run := s.startRun(kind, artifact.SourcePrompt, req.TeamID)
	defer func() { s.finishRun(ctx, run, err) }()

	if err := validateKind(kind); err != nil {
		return nil, err
	}
	maxCases, err := s.maxCases(req.MaxCases)
	if err != nil {
		return nil, err
	}
	if blank(req.UserStory) && blank(req.AcceptanceCriteria) && blank(req.FeatureDescription) {
		return nil, apperrors.Validationf("At least one of user_story, acceptance_criteria or feature_description is required.")
	}

	return s.generate(ctx, run, job{
		kind:        kind,
		source:      artifact.SourcePrompt,
		teamID:      req.TeamID,
		userContext: req.AppContext,
		requirement: prompts.Requirement{
			UserStory:          req.UserStory,
			AcceptanceCriteria: req.AcceptanceCriteria,
			FeatureDescription: req.FeatureDescription,
		},
		maxCases: maxCases,
	})
}

// FromDocuments generates from uploaded files. Extracted texts are joined
// with blank lines; the section hint, when given, leads the document text.
func (s *Service) FromDocuments(ctx context.Context, kind artifact.Kind, req DocumentRequest) (res *artifact.Result, err error) {
	run := s.startRun(kind, artifact.SourceDocument, req.TeamID)
	defer func() { s.finishRun(ctx, run, err) }()

	if err := validateKind(kind); err != nil {
		return nil, err
	}
	maxCases, err := s.maxCases(req.MaxCases)
	if err != nil {
		return nil, err
	}
	if len(req.Documents) == 0 {
		return nil, apperrors.Validationf("At least one document is required.")
	}

	var texts []string
	for _, doc := range req.Documents {
		text := s.extractor.Extract(doc.Filename, doc.Data)
		if strings.TrimSpace(text) == "" {
			s.logger.Debug("no text extracted", zap.String("filename", doc.Filename))
			continue
		}
		texts = append(texts, text)
	}
	docText := strings.Join(texts, "\n\n")
	if strings.TrimSpace(docText) == "" {
		return nil, apperrors.EmptyContent(msgNoDocumentText)
	}
	if req.SectionHint != "" {
		docText = req.SectionHint + "\n\n" + docText
	}

	return s.generate(ctx, run, job{
		kind:        kind,
		source:      artifact.SourceDocument,
		teamID:      req.TeamID,
		userContext: req.AppContext,
		requirement: prompts.Requirement{DocText: docText},
		truncate:    true,
		maxCases:    maxCases,
	})
}

// FromConfluence generates from the body of a Confluence page.
func (s *Service) FromConfluence(ctx context.Context, kind artifact.Kind, req ConfluenceRequest) (res *artifact.Result, err error) {
	run := s.startRun(kind, artifact.SourceConfluence, req.TeamID)
	defer func() { s.finishRun(ctx, run, err) }()

	if err := validateKind(kind); err != nil {
		return nil, err
	}
	maxCases, err := s.maxCases(req.MaxCases)
	if err != nil {
		return nil, err
	}
	if blank(req.URL) {
		return nil, apperrors.Validationf("confluence_url is required.")
	}
	if s.pages == nil {
		return nil, apperrors.UpstreamLookup(atlassian.ErrNotConfigured)
	}

	page, err := s.pages.PageByURL(ctx, strings.TrimSpace(req.URL))
	if err != nil {
		return nil, apperrors.UpstreamLookup(err)
	}
	if blank(page.Content) {
		return nil, apperrors.EmptyContent(msgNoConfluenceText)
	}

	return s.generate(ctx, run, job{
		kind:        kind,
		source:      artifact.SourceConfluence,
		teamID:      req.TeamID,
		userContext: req.AppContext,
		requirement: prompts.Requirement{
			FeatureDescription: page.Title,
			DocText:            page.Content,
		},
		truncate: true,
		maxCases: maxCases,
	})
}

// FromJira generates from a Jira story: the summary becomes the feature
// description, the description the user story.
func (s *Service) FromJira(ctx context.Context, kind artifact.Kind, req JiraRequest) (res *artifact.Result, err error) {
	run := s.startRun(kind, artifact.SourceJira, req.TeamID)
	defer func() { s.finishRun(ctx, run, err) }()

	if err := validateKind(kind); err != nil {
		return nil, err
	}
	maxCases, err := s.maxCases(req.MaxCases)
	if err != nil {
		return nil, err
	}

	story, err := s.AutoPopulateStory(ctx, req.IssueKey)
	if err != nil {
		return nil, err
	}
	if blank(story.Summary) && blank(story.Description) && blank(story.AcceptanceCriteria) {
		return nil, apperrors.EmptyContent(msgNoJiraText)
	}

	return s.generate(ctx, run, job{
		kind:        kind,
		source:      artifact.SourceJira,
		teamID:      req.TeamID,
		userContext: req.AppContext,
		requirement: prompts.Requirement{
			FeatureDescription: story.Summary,
			UserStory:          story.Description,
			AcceptanceCriteria: story.AcceptanceCriteria,
		},
		truncate: true,
		maxCases: maxCases,
	})
}

// AutoPopulateStory fetches a Jira story so a client can prefill the
// prompt form.
func (s *Service) AutoPopulateStory(ctx context.Context, issueKey string) (*atlassian.Story, error) {
	issueKey = strings.TrimSpace(issueKey)
	if issueKey == "" {
		return nil, apperrors.Validationf("issue_key is required.")
	}
	if s.stories == nil {
		return nil, apperrors.UpstreamLookup(atlassian.ErrNotConfigured)
	}
	story, err := s.stories.Story(ctx, issueKey)
	if err != nil {
		return nil, apperrors.UpstreamLookup(err)
	}
	return story, nil
}

func (s *Service) generate(ctx context.Context, run *Run, j job) (*artifact.Result, error) {
	appContext, err := s.resolver.ResolveContext(ctx, j.teamID, j.userContext)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	req := j.requirement
	req.AppContext = appContext
	text := prompts.BuildRequirementText(req)
	if j.truncate {
		text = prompts.Truncate(text, s.maxContextChars)
	}

	var prompt string
	switch j.kind {
	case artifact.KindTestCases:
		prompt = prompts.TestCasePrompt(appContext, text, j.maxCases)
	default:
		prompt = prompts.TestPlanPrompt(appContext, text)
	}
	run.PromptChars = len([]rune(prompt))

	s.logger.Debug("generating artifact",
		zap.String("kind", string(j.kind)),
		zap.String("source", sourceLabel(j.source)),
		zap.Int("requirement_chars", len(text)),
	)

	result, err := s.generator.Generate(ctx, prompt, artifact.Meta{Kind: j.kind, Source: j.source})
	if err != nil {
		return nil, apperrors.UpstreamGeneration(err)
	}
	return result, nil
}

func (s *Service) maxCases(requested *int) (int, error) {
	if requested == nil {
		return s.defaultMaxCases, nil
	}
	if *requested < 1 || *requested > config.MaxCasesLimit {
		return 0, apperrors.Validationf("max_cases must be between 1 and %d.", config.MaxCasesLimit)
	}
	return *requested, nil
}

func validateKind(kind artifact.Kind) error {
	if kind != artifact.KindTestCases && kind != artifact.KindTestPlan {
		return apperrors.Validationf("unsupported artifact kind %q", kind)
	}
	return nil
}

func (s *Service) startRun(kind artifact.Kind, source artifact.Source, teamID *int64) *Run {
	return &Run{
		Kind:      kind,
		Source:    sourceLabel(source),
		TeamID:    teamID,
		Provider:  s.generator.Name(),
		CreatedAt: time.Now().UTC(),
	}
}

// finishRun records the outcome. Recording failures are logged only.
func (s *Service) finishRun(ctx context.Context, run *Run, err error) {
	run.DurationMS = time.Since(run.CreatedAt).Milliseconds()
	s.metrics.ObserveGeneration(string(run.Kind), run.Source, err)

	run.Status = RunSucceeded
	if err != nil {
		run.Status = RunFailed
		run.ErrorKind = string(apperrors.KindOf(err))
		run.ErrorMessage = err.Error()
		s.logger.Warn("generation failed",
			zap.String("kind", string(run.Kind)),
			zap.String("source", run.Source),
			zap.String("error_kind", run.ErrorKind),
			zap.Error(err),
		)
	}

	if s.runs == nil || !recordable(run.Kind) {
		return
	}
	// The request context may already be cancelled; the record still lands.
	if rerr := s.runs.Record(context.WithoutCancel(ctx), run); rerr != nil {
		s.logger.Warn("recording generation run", zap.Error(rerr))
	}
}

func recordable(kind artifact.Kind) bool {
	return kind == artifact.KindTestCases || kind == artifact.KindTestPlan
}

func sourceLabel(source artifact.Source) string {
	if source == artifact.SourcePrompt {
		return "prompt"
	}
	return string(source)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
