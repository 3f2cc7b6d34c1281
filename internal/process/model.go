package process

import (
	"time"

	"process-platform/internal/query"
)

// EntityRef is the resolved form of an id in Process.EntityIDs.
type EntityRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Process struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Status      string    `json:"status" db:"status"`
	Tags        []string  `json:"tags" db:"tags"`
	EntityIDs   []int64   `json:"entity_ids" db:"entity_ids"`
	CreatedBy   *int64    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	CreatedByName string      `json:"created_by_name" db:"created_by_name"`
	DocumentCount int64       `json:"document_count" db:"document_count"`
	Entities      []EntityRef `json:"entities" db:"entities"`
}

type ListFilter struct {
	Status    query.Opt
	Category  query.Opt
	CreatedBy query.Opt
	EntityID  query.Opt
	Tags      query.Opt
	Search    query.Opt
	Limit     uint64
	Offset    uint64
}

type Input struct {
	Name        string
	Description string
	Category    string
	Status      string
	Tags        []string
	EntityIDs   []int64
}
