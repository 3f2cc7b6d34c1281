package accesslog

import (
	"time"

	"process-platform/internal/query"
)

// AccessLog is an append-only audit row.
type AccessLog struct {
	ID         int64     `gorm:"primaryKey" json:"id" db:"id"`
	UserID     *int64    `json:"user_id" db:"user_id"`
	UserName   string    `json:"user_name" db:"user_name"`
	Action     string    `json:"action" db:"action"`
	Resource   string    `json:"resource" db:"resource"`
	ResourceID string    `json:"resource_id" db:"resource_id"`
	Success    bool      `json:"success" db:"success"`
	Details    string    `json:"details" db:"details"`
	IPAddress  string    `gorm:"column:ip_address" json:"ip_address" db:"ip_address"`
	UserAgent  string    `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

func (AccessLog) TableName() string { return "access_logs" }

type ActionCount struct {
	Action string `json:"action" db:"action"`
	Count  int64  `json:"count" db:"count"`
}

type ResourceCount struct {
	Resource string `json:"resource" db:"resource"`
	Count    int64  `json:"count" db:"count"`
}

type UserCount struct {
	UserName string `json:"user_name" db:"user_name"`
	Count    int64  `json:"count" db:"count"`
}

type Stats struct {
	Total        int64           `json:"total"`
	Success      int64           `json:"success"`
	Failed       int64           `json:"failed"`
	SuccessRate  float64         `json:"successRate"`
	TopActions   []ActionCount   `json:"topActions"`
	TopResources []ResourceCount `json:"topResources"`
	TopUsers     []UserCount     `json:"topUsers"`
}

type ListFilter struct {
	UserID   query.Opt
	Action   query.Opt
	Resource query.Opt
	Success  query.Opt
	Limit    uint64
	Offset   uint64
}

// Entry is what other packages hand over to be recorded.
type Entry struct {
	UserID     *int64
	UserName   string
	Action     string
	Resource   string
	ResourceID string
	Success    bool
	Details    string
	IPAddress  string
	UserAgent  string
}
