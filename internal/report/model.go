package report

import (
	"encoding/json"
	"time"

	"process-platform/internal/query"
)

// Report is a saved report definition: the filters that produce it and an
// optional snapshot of its data.
type Report struct {
	ID          int64           `gorm:"primaryKey" json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Type        string          `json:"type" db:"type"`
	Filters     json.RawMessage `json:"filters" db:"filters"`
	Data        json.RawMessage `json:"data" db:"data"`
	CreatedBy   *int64          `json:"created_by" db:"created_by"`
	IsPublic    bool            `json:"is_public" db:"is_public"`
	Tags        []string        `gorm:"-" json:"tags" db:"tags"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	CreatedByName string `gorm:"-" json:"created_by_name" db:"created_by_name"`
}

func (Report) TableName() string { return "reports" }

type ListFilter struct {
	CreatedBy query.Opt
	Type      query.Opt
	IsPublic  query.Opt
	Search    query.Opt
	Limit     uint64
	Offset    uint64
}

// Input is the full writable field set. Updates overwrite all of it.
type Input struct {
	Name        string
	Description string
	Type        string
	Filters     json.RawMessage
	Data        json.RawMessage
	IsPublic    bool
	Tags        []string
}
