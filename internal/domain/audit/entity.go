// internal/domain/audit/entity.go
package audit

import (
	"database/sql"
	"time"
)

// Entry is one immutable admin-action record. Rows are append-only; there is
// no update or delete path.
type Entry struct {
	ID         int64                  `json:"id" db:"id"`
	ActorID    int64                  `json:"actor_id" db:"actor_id"`
	ActorEmail string                 `json:"actor_email" db:"actor_email"`
	Action     string                 `json:"action" db:"action"`
	TargetType sql.NullString         `json:"target_type,omitempty" db:"target_type"`
	TargetID   sql.NullInt64          `json:"target_id,omitempty" db:"target_id"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}

type ListFilters struct {
	ActorID  int64  `form:"actor_id"`
	Action   string `form:"action"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type ListResponse struct {
	Entries    []Entry `json:"entries"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}
