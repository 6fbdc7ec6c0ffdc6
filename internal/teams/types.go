package teams

import "time"

// Team is an organizational unit with its own QA context. ContextInfo is
// the authoritative application context for generation requests tagged
// with the team.
type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ContextInfo string    `json:"context_info"`
	TechStack   string    `json:"tech_stack"`
	KeyContacts string    `json:"key_contacts"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
