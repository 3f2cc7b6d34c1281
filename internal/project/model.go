package project

import (
	"time"

	"process-platform/internal/query"
)

type Project struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	ProjectType string     `json:"project_type" db:"project_type"`
	StartDate   *time.Time `json:"start_date" db:"start_date"`
	EndDate     *time.Time `json:"end_date" db:"end_date"`
	Budget      *float64   `json:"budget" db:"budget"`
	ManagerID   *int64     `json:"manager_id" db:"manager_id"`
	CreatedBy   *int64     `json:"created_by" db:"created_by"`
	Tags        []string   `json:"tags" db:"tags"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	ManagerName   string  `json:"manager_name" db:"manager_name"`
	CreatedByName string  `json:"created_by_name" db:"created_by_name"`
	EntityIDs     []int64 `json:"entity_ids" db:"entity_ids"`
	MemberIDs     []int64 `json:"member_ids" db:"member_ids"`
	EntityCount   int64   `json:"entity_count" db:"entity_count"`
	MemberCount   int64   `json:"member_count" db:"member_count"`

	Members []Member `json:"members" db:"members"`
}

// Member is a user's membership of a project.
type Member struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Avatar   string    `json:"avatar"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

const DefaultMemberRole = "member"

type ListFilter struct {
	Status      query.Opt
	ProjectType query.Opt
	ManagerID   query.Opt
	Tags        query.Opt
	Search      query.Opt
	Limit       uint64
	Offset      uint64
}

// Input is the full writable field set including the entity and member links,
// which are replaced as a whole on update.
type Input struct {
	Name        string
	Description string
	Status      string
	ProjectType string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
	ManagerID   *int64
	Tags        []string
	EntityIDs   []int64
	MemberIDs   []int64
	// MemberRoles sets the role of listed members. Members without an entry
	// keep their current role, or join as DefaultMemberRole.
	MemberRoles map[int64]string
}
