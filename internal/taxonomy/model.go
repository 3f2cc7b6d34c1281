// Package taxonomy serves the two admin-managed vocabularies, categories and
// statuses. They share one shape; statuses also carry a display order.
package taxonomy

import (
	"time"

	"process-platform/internal/db"
)

// Kind describes one vocabulary.
type Kind struct {
	Name         string // singular, used in messages: "Category"
	Key          string // used in response keys: "deletedCategory"
	Table        db.Table
	DefaultColor string
	Ordered      bool
}

var (
	Categories = Kind{
		Name:         "Category",
		Key:          "Category",
		Table:        db.CategoriesTable,
		DefaultColor: "#3B82F6",
	}
	Statuses = Kind{
		Name:         "Status",
		Key:          "Status",
		Table:        db.StatusesTable,
		DefaultColor: "#10B981",
		Ordered:      true,
	}
)

type Item struct {
	ID          int64     `gorm:"primaryKey" json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Type        string    `json:"type" db:"type"`
	Color       string    `json:"color" db:"color"`
	IsSystem    bool      `json:"is_system" db:"is_system"`
	Order       int       `gorm:"column:order" json:"order,omitempty" db:"order"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Input struct {
	Name        string
	Description string
	Type        string
	Color       string
	Order       *int
}
