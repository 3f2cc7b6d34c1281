package document

import (
	"time"

	"process-platform/internal/query"
)

type Document struct {
	ID          int64     `gorm:"primaryKey" json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ProcessID   *int64    `json:"process_id" db:"process_id"`
	ProjectID   *int64    `json:"project_id" db:"project_id"`
	LinkType    string    `json:"link_type" db:"link_type"`
	CreatedBy   *int64    `json:"created_by" db:"created_by"`
	VersionSeq  int64     `json:"-" db:"version_seq"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	CreatedByName string   `gorm:"-" json:"created_by_name" db:"created_by_name"`
	ProcessName   string   `gorm:"-" json:"process_name" db:"process_name"`
	ProjectName   string   `gorm:"-" json:"project_name" db:"project_name"`
	VersionCount  int64    `gorm:"-" json:"version_count" db:"version_count"`
	LatestVersion *Version `gorm:"-" json:"latest_version" db:"latest_version"`
}

func (Document) TableName() string { return "documents" }

// Version is one uploaded file of a document. The current version is the one
// with the highest Seq.
type Version struct {
	ID          int64     `gorm:"primaryKey" json:"id" db:"id"`
	DocumentID  int64     `json:"document_id" db:"document_id"`
	Seq         int64     `json:"seq" db:"seq"`
	Version     string    `json:"version" db:"version"`
	URL         string    `gorm:"column:url" json:"url" db:"url"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	UploadedBy  *int64    `json:"uploaded_by" db:"uploaded_by"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploaded_at" db:"uploaded_at"`
	TicketID    *string   `gorm:"column:ticket_id" json:"-" db:"-"`

	UploadedByName string `gorm:"-" json:"uploaded_by_name,omitempty" db:"uploaded_by_name"`
}

func (Version) TableName() string { return "document_versions" }

// Detail is a document with its full version history, newest first.
type Detail struct {
	Document
	Versions []Version `json:"versions"`
}

type ListFilter struct {
	ProcessID query.Opt
	ProjectID query.Opt
	LinkType  query.Opt
	CreatedBy query.Opt
	Search    query.Opt
	Limit     uint64
	Offset    uint64
}

// Input is the writable document metadata.
type Input struct {
	Name        string
	Description string
	ProcessID   *int64
	ProjectID   *int64
	LinkType    string
}

// VersionInput records one uploaded file. A nil DocumentID creates the
// document from the metadata in Input. A TicketID can be recorded once.
type VersionInput struct {
	DocumentID  *int64
	Input       Input
	Version     string
	URL         string
	ContentType string
	Size        int64
	UploadedBy  int64
	TicketID    string
}
