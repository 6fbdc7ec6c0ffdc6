package knowledge

import (
	"context"
	"fmt"
	"strings"
)

// BucketSize caps each bucket returned by Retrieve.
const BucketSize = 5

// Lister is the storage the retriever reads from.
type Lister interface {
	List(ctx context.Context, f Filter) ([]Entry, error)
}

// Retriever selects knowledge relevant to a question. Matching is literal:
// there is no ranking beyond storage order.
type Retriever struct {
	store Lister
}

// NewRetriever creates a retriever over store.
func NewRetriever(store Lister) *Retriever {
	return &Retriever{store: store}
}

// Retrieve returns up to BucketSize universal entries and, when teamID is
// given, up to BucketSize of the team's other entries that match question.
// An entry matches when the whole question appears in its title or content,
// ignoring case, or when one of its tags equals a word of the question.
func (r *Retriever) Retrieve(ctx context.Context, question string, teamID *int64) (Context, error) {
	m := newMatcher(question)
	out := Context{Universal: []Entry{}, ProjectSpecific: []Entry{}}

	universal, err := r.store.List(ctx, Filter{Category: CategoryUniversal})
	if err != nil {
		return out, fmt.Errorf("retrieving universal knowledge: %w", err)
	}
	out.Universal = firstMatching(universal, BucketSize, m.matches)

	if teamID != nil {
		scoped, err := r.store.List(ctx, Filter{TeamID: teamID})
		if err != nil {
			return out, fmt.Errorf("retrieving team knowledge: %w", err)
		}
		out.ProjectSpecific = firstMatching(scoped, BucketSize, func(e Entry) bool {
			return e.Category != CategoryUniversal && m.matches(e)
		})
	}
	return out, nil
}

// Related returns up to limit entries whose title or content contains the
// question. With a team, only the team's entries and universal ones count.
func (r *Retriever) Related(ctx context.Context, question string, teamID *int64, limit int) ([]Entry, error) {
	entries, err := r.store.List(ctx, Filter{TeamID: teamID, IncludeUniversal: true})
	if err != nil {
		return nil, fmt.Errorf("finding related knowledge: %w", err)
	}
	m := newMatcher(question)
	return firstMatching(entries, limit, m.containsQuestion), nil
}

type matcher struct {
	question string
	words    map[string]bool
}

func newMatcher(question string) matcher {
	lower := strings.ToLower(question)
	words := make(map[string]bool)
	for _, w := range strings.Fields(lower) {
		words[w] = true
	}
	return matcher{question: lower, words: words}
}

func (m matcher) containsQuestion(e Entry) bool {
	return strings.Contains(strings.ToLower(e.Title), m.question) ||
		strings.Contains(strings.ToLower(e.Content), m.question)
}

func (m matcher) matches(e Entry) bool {
	if m.containsQuestion(e) {
		return true
	}
	for _, tag := range e.Tags {
		if m.words[strings.ToLower(tag)] {
			return true
		}
	}
	return false
}

func firstMatching(entries []Entry, limit int, keep func(Entry) bool) []Entry {
	out := []Entry{}
	for _, e := range entries {
		if len(out) >= limit {
			break
		}
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
