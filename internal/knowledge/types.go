package knowledge

import "time"

// Category groups knowledge entries.
type Category string

const (
	CategoryUniversal       Category = "universal"
	CategoryProjectSpecific Category = "project_specific"
	CategoryOnboarding      Category = "onboarding"
	CategoryTroubleshooting Category = "troubleshooting"
	CategoryTools           Category = "tools"
)

var validCategories = map[Category]bool{
	CategoryUniversal:       true,
	CategoryProjectSpecific: true,
	CategoryOnboarding:      true,
	CategoryTroubleshooting: true,
	CategoryTools:           true,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return validCategories[c] }

// Entry is one piece of QA knowledge. Entries without a team are shared.
type Entry struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   Category  `json:"category"`
	TeamID     *int64    `json:"team_id"`
	Tags       []string  `json:"tags"`
	UsageCount int       `json:"usage_count"`
	SourcePath string    `json:"source_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Summary is the short form of an entry returned alongside assistant answers.
type Summary struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
}

// Summary returns the short form of e.
func (e Entry) Summary() Summary {
	return Summary{ID: e.ID, Title: e.Title, Category: e.Category}
}

// Filter narrows List. With IncludeUniversal set, a TeamID filter also
// admits universal entries.
type Filter struct {
	Category         Category
	TeamID           *int64
	IncludeUniversal bool
}

// Context is the knowledge retrieved for one question.
type Context struct {
	Universal       []Entry `json:"universal"`
	ProjectSpecific []Entry `json:"project_specific"`
}

// Entries returns universal entries followed by project-specific ones.
func (c Context) Entries() []Entry {
	out := make([]Entry, 0, len(c.Universal)+len(c.ProjectSpecific))
	out = append(out, c.Universal...)
	return append(out, c.ProjectSpecific...)
}
