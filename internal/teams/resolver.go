package teams

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-qa/internal/apperrors"
)

// GenericContext is used when neither a team nor the caller supplies one.
const GenericContext = "Generic web/mobile application for feature-level QA."

// TeamGetter is the lookup the resolver needs.
type TeamGetter interface {
	GetTeam(ctx context.Context, id int64) (*Team, error)
}

// Resolver decides the application context for a generation request.
type Resolver struct {
	teams  TeamGetter
	logger *zap.Logger
}

// NewResolver creates a resolver over teams.
func NewResolver(teams TeamGetter, logger *zap.Logger) *Resolver {
	return &Resolver{teams: teams, logger: logger.Named("context")}
}

// ResolveContext returns the team's context when teamID names an existing
// team, ignoring userContext. Otherwise it returns userContext, or
// GenericContext when that is blank. An unknown team falls back; any other
// lookup failure is returned.
func (r *Resolver) ResolveContext(ctx context.Context, teamID *int64, userContext string) (string, error) {
	if teamID != nil {
		team, err := r.teams.GetTeam(ctx, *teamID)
		switch {
		case err == nil:
			if strings.TrimSpace(team.ContextInfo) != "" {
				return team.ContextInfo, nil
			}
			return GenericContext, nil
		case errors.Is(err, apperrors.ErrNotFound):
			r.logger.Debug("unknown team, falling back", zap.Int64("team_id", *teamID))
		default:
			r.logger.Warn("team lookup failed", zap.Int64("team_id", *teamID), zap.Error(err))
			return "", fmt.Errorf("resolving context for team %d: %w", *teamID, err)
		}
	}

	if strings.TrimSpace(userContext) != "" {
		return userContext, nil
	}
	return GenericContext, nil
}
