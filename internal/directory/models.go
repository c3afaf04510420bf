package directory

import "time"

// User is an operator/agent account known to the call center.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Extension string    `json:"extension,omitempty" db:"extension"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Extension is a PBX extension row, joined to its assigned agent.
type Extension struct {
	Extension string    `json:"extension" db:"extension"`
	AgentName string    `json:"agent_name" db:"agent_name"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
