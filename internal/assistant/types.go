package assistant

import (
	"encoding/json"
	"time"

	"github.com/ziadkadry99/auto-qa/internal/knowledge"
)

// AskRequest is one question to the assistant. Both camelCase and
// snake_case keys are accepted.
type AskRequest struct {
	Question    string `json:"question"`
	TeamID      *int64 `json:"teamId"`
	UserContext string `json:"userContext"`
}

// UnmarshalJSON accepts team_id and user_context as aliases.
func (r *AskRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Question         string `json:"question"`
		TeamID           *int64 `json:"teamId"`
		TeamIDSnake      *int64 `json:"team_id"`
		UserContext      string `json:"userContext"`
		UserContextSnake string `json:"user_context"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Question = raw.Question
	r.TeamID = raw.TeamID
	if r.TeamID == nil {
		r.TeamID = raw.TeamIDSnake
	}
	r.UserContext = raw.UserContext
	if r.UserContext == "" {
		r.UserContext = raw.UserContextSnake
	}
	return nil
}

// Answer is the assistant's reply to an AskRequest.
type Answer struct {
	QueryID            int64               `json:"queryId"`
	Response           string              `json:"response"`
	SuggestedFollowups []string            `json:"suggestedFollowups"`
	RelatedDocs        []knowledge.Summary `json:"relatedDocs"`
	ResponseTime       float64             `json:"responseTime"`
}

// FeedbackRequest rates a previous answer.
type FeedbackRequest struct {
	QueryID  int64  `json:"queryId"`
	Rating   int    `json:"rating"`
	Comments string `json:"comments"`
}

// UnmarshalJSON accepts query_id as an alias.
func (r *FeedbackRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		QueryID      int64  `json:"queryId"`
		QueryIDSnake int64  `json:"query_id"`
		Rating       int    `json:"rating"`
		Comments     string `json:"comments"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.QueryID = raw.QueryID
	if r.QueryID == 0 {
		r.QueryID = raw.QueryIDSnake
	}
	r.Rating = raw.Rating
	r.Comments = raw.Comments
	return nil
}

// Query is the persisted record of one assistant call.
type Query struct {
	ID               int64     `json:"id"`
	Question         string    `json:"question"`
	Response         string    `json:"response"`
	TeamID           *int64    `json:"team_id"`
	ResponseTime     float64   `json:"response_time"`
	UserFeedback     *int      `json:"user_feedback"`
	FeedbackComments string    `json:"feedback_comments"`
	CreatedAt        time.Time `json:"created_at"`
}

// QueryFilter narrows ListQueries.
type QueryFilter struct {
	TeamID *int64
	Limit  int
}
