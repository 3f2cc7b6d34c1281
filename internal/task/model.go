package task

import (
	"time"

	"process-platform/internal/query"
)

type Task struct {
	ID           int64      `gorm:"primaryKey" json:"id" db:"id"`
	TaskNumber   string     `json:"task_number" db:"task_number"`
	ProjectID    *int64     `json:"project_id" db:"project_id"`
	Name         string     `json:"name" db:"name"`
	Description  string     `json:"description" db:"description"`
	AssigneeID   *int64     `json:"assignee_id" db:"assignee_id"`
	AssigneeType string     `json:"assignee_type" db:"assignee_type"`
	StartDate    *time.Time `json:"start_date" db:"start_date"`
	EndDate      *time.Time `json:"end_date" db:"end_date"`
	Priority     string     `json:"priority" db:"priority"`
	Status       string     `json:"status" db:"status"`
	Remarks      string     `json:"remarks" db:"remarks"`
	CreatedBy    *int64     `json:"created_by" db:"created_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`

	ProjectName   string `gorm:"-" json:"project_name" db:"project_name"`
	AssigneeName  string `gorm:"-" json:"assignee_name" db:"assignee_name"`
	CreatedByName string `gorm:"-" json:"created_by_name" db:"created_by_name"`
	CommentCount  int64  `gorm:"-" json:"comment_count" db:"comment_count"`
}

func (Task) TableName() string { return "tasks" }

type Comment struct {
	ID        int64     `gorm:"primaryKey" json:"id" db:"id"`
	TaskID    int64     `json:"task_id" db:"task_id"`
	UserID    *int64    `json:"user_id" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	UserName   string `gorm:"-" json:"user_name" db:"user_name"`
	UserAvatar string `gorm:"-" json:"user_avatar" db:"user_avatar"`
}

func (Comment) TableName() string { return "task_comments" }

type ListFilter struct {
	ProjectID  query.Opt
	Status     query.Opt
	AssigneeID query.Opt
	Priority   query.Opt
	Search     query.Opt
	Limit      uint64
	Offset     uint64
}

type Input struct {
	ProjectID    *int64
	Name         string
	Description  string
	AssigneeID   *int64
	AssigneeType string
	StartDate    *time.Time
	EndDate      *time.Time
	Priority     string
	Status       string
	Remarks      string
}
