package entity

import (
	"time"

	"process-platform/internal/query"
)

// Entity is an organizational unit: a department, team or project group.
type Entity struct {
	ID          int64     `gorm:"primaryKey" json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description" db:"description"`
	ParentID    *int64    `json:"parent_id" db:"parent_id"`
	ManagerID   *int64    `json:"manager_id" db:"manager_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	ManagerName  string `gorm:"-" json:"manager_name" db:"manager_name"`
	ParentName   string `gorm:"-" json:"parent_name" db:"parent_name"`
	ProcessCount int64  `gorm:"-" json:"process_count" db:"process_count"`
}

func (Entity) TableName() string { return "entities" }

type ListFilter struct {
	ID        query.Opt
	Type      query.Opt
	ParentID  query.Opt
	ManagerID query.Opt
	Search    query.Opt
	Limit     uint64
	Offset    uint64
}

// Input is the full writable field set.
type Input struct {
	Name        string
	Type        string
	Description string
	ParentID    *int64
	ManagerID   *int64
}
