// Package upload implements the two phase document upload: a signed ticket
// and presigned URL first, then a completion call that records the version.
// A single phase multipart upload goes through the same recording path.
package upload

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"process-platform/internal/blob"
	"process-platform/internal/document"
	"process-platform/internal/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store is the part of the blob store uploads need. *blob.Store satisfies it.
type Store interface {
	Configured() bool
	Missing() string
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (blob.ObjectInfo, error)
	Stat(ctx context.Context, key string) (blob.ObjectInfo, error)
	ObjectURL(key string) string
	Ping(ctx context.Context) error
}

// Documents resolves and versions documents. document.Service satisfies it.
type Documents interface {
	Get(ctx context.Context, id int64) (*document.Detail, error)
	RecordVersion(ctx context.Context, in document.VersionInput) (*document.Document, *document.Version, error)
}

// Pinger reports database reachability for diagnostics.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Secret    []byte
	TicketTTL time.Duration
	MaxBytes  int64
}

// Ticket is returned by phase one. The client PUTs the file to UploadURL and
// then calls complete with Token.
type Ticket struct {
	Token     string    `json:"ticket"`
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ObjectURL string    `json:"objectUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Result struct {
	Document *document.Document `json:"document"`
	Version  *document.Version  `json:"version"`
}

type Diagnostics struct {
	BlobConfigured bool   `json:"blobConfigured"`
	BlobMissing    string `json:"blobMissing,omitempty"`
	BlobReachable  bool   `json:"blobReachable"`
	DBOk           bool   `json:"dbOk"`
	MaxUploadBytes int64  `json:"maxUploadBytes"`
}

type Service interface {
	IssueTicket(ctx context.Context, userID int64, p Payload) (*Ticket, error)
	Complete(ctx context.Context, ticket, url string) (*Result, error)
	Upload(ctx context.Context, userID int64, p Payload, r io.Reader) (*Result, error)
	Diagnostics(ctx context.Context) Diagnostics
}

type DefaultService struct {
	cfg       Config
	store     Store
	documents Documents
	db        Pinger
}

func NewService(cfg Config, store Store, documents Documents, db Pinger) Service {
	if cfg.TicketTTL <= 0 {
		cfg.TicketTTL = 15 * time.Minute
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	return &DefaultService{cfg: cfg, store: store, documents: documents, db: db}
}

// IssueTicket fails closed: no URL and no ticket unless every precondition
// holds.
func (s *DefaultService) IssueTicket(ctx context.Context, userID int64, p Payload) (*Ticket, error) {
	p, err := s.validate(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(p.FileName)
	uploadURL, err := s.store.PresignPut(ctx, key, s.cfg.TicketTTL)
	if err != nil {
		return nil, errors.BadGateway("Failed to prepare upload", err)
	}
	token, expires, err := signTicket(s.cfg.Secret, TicketClaims{
		Payload:   p,
		UserID:    userID,
		ObjectKey: key,
	}, s.cfg.TicketTTL)
	if err != nil {
		return nil, errors.Internal(err)
	}

	log.Info().Int64("user_id", userID).Str("key", key).Msg("upload ticket issued")
	return &Ticket{
		Token:     token,
		UploadURL: uploadURL,
		ObjectKey: key,
		ObjectURL: s.store.ObjectURL(key),
		ExpiresAt: expires,
	}, nil
}

// Complete records the version for an uploaded ticket. The object must be in
// the store and within the size limit. url, when given, must be the ticket's
// own object URL. A ticket completes once; a retry gets a 409.
func (s *DefaultService) Complete(ctx context.Context, ticket, url string) (*Result, error) {
	claims, err := verifyTicket(s.cfg.Secret, ticket)
	if err != nil {
		return nil, errors.Unauthorized("Invalid upload ticket", err)
	}
	p := claims.Payload
	if strings.TrimSpace(p.Version) == "" {
		return nil, errors.BadRequest("Missing required fields", nil).WithDetails("version")
	}
	objectURL := s.store.ObjectURL(claims.ObjectKey)
	if url != "" && url != objectURL {
		return nil, errors.BadRequest("Invalid fields", nil).WithDetails("url")
	}

	info, err := s.store.Stat(ctx, claims.ObjectKey)
	if err != nil {
		return nil, errors.NotFound("Object not uploaded", err)
	}
	if info.Size > s.cfg.MaxBytes {
		log.Warn().Str("key", claims.ObjectKey).Int64("size", info.Size).Msg("uploaded object exceeds the size limit")
		return nil, errors.PayloadTooLarge(fmt.Sprintf("File too large (max %d bytes)", s.cfg.MaxBytes), nil)
	}
	p.Size = info.Size
	if info.ContentType != "" {
		p.ContentType = info.ContentType
	}
	return s.record(ctx, claims.UserID, p, objectURL, claims.ID)
}

// Upload is the single phase variant: the server writes the object itself.
func (s *DefaultService) Upload(ctx context.Context, userID int64, p Payload, r io.Reader) (*Result, error) {
	p, err := s.validate(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(p.FileName)
	info, err := s.store.Put(ctx, key, r, p.Size, p.ContentType)
	if err != nil {
		return nil, errors.BadGateway("Upload failed", err)
	}
	if info.Size > 0 {
		p.Size = info.Size
	}
	return s.record(ctx, userID, p, s.store.ObjectURL(key), "")
}

func (s *DefaultService) Diagnostics(ctx context.Context) Diagnostics {
	d := Diagnostics{
		BlobConfigured: s.store.Configured(),
		MaxUploadBytes: s.cfg.MaxBytes,
	}
	if !d.BlobConfigured {
		d.BlobMissing = s.store.Missing()
	} else if err := s.store.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("blob store unreachable")
	} else {
		d.BlobReachable = true
	}

	if s.db == nil {
		log.Warn().Msg("diagnostics without a database handle")
	} else if err := s.db.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("database unreachable")
	} else {
		d.DBOk = true
	}
	return d
}

// validate runs the preconditions in a fixed order: identity, version label,
// size, blob configuration, target document.
func (s *DefaultService) validate(ctx context.Context, userID int64, p Payload) (Payload, error) {
	if userID <= 0 {
		return p, errors.Unauthorized("Authentication required", nil)
	}
	p.Version = strings.TrimSpace(p.Version)
	if p.Version == "" {
		return p, errors.BadRequest("Missing required fields", nil).WithDetails("version")
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.FileName == "" {
		p.FileName = p.Name
	}
	if p.DocumentID == nil && p.Name == "" {
		return p, errors.BadRequest("Missing required fields", nil).WithDetails("name")
	}
	if p.Size < 0 {
		return p, errors.BadRequest("Invalid fields", nil).WithDetails("size")
	}
	if p.Size > s.cfg.MaxBytes {
		return p, errors.PayloadTooLarge(fmt.Sprintf("File too large (max %d bytes)", s.cfg.MaxBytes), nil)
	}
	if !s.store.Configured() {
		return p, errors.Configuration(s.store.Missing())
	}
	if p.DocumentID != nil {
		if _, err := s.documents.Get(ctx, *p.DocumentID); err != nil {
			return p, err
		}
	}
	if p.ContentType == "" {
		p.ContentType = "application/octet-stream"
	}
	return p, nil
}

func (s *DefaultService) record(ctx context.Context, userID int64, p Payload, url, ticketID string) (*Result, error) {
	doc, v, err := s.documents.RecordVersion(ctx, document.VersionInput{
		DocumentID: p.DocumentID,
		Input: document.Input{
			Name:        p.Name,
			Description: p.Description,
			ProcessID:   p.ProcessID,
			ProjectID:   p.ProjectID,
			LinkType:    p.LinkType,
		},
		Version:     p.Version,
		URL:         url,
		ContentType: p.ContentType,
		Size:        p.Size,
		UploadedBy:  userID,
		TicketID:    ticketID,
	})
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, errors.Internal(err)
	}
	return &Result{Document: doc, Version: v}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// SanitizeName keeps object keys to a safe character set.
func SanitizeName(name string) string {
	name = unsafeChars.ReplaceAllString(strings.TrimSpace(name), "-")
	name = strings.Trim(name, "-.")
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	if name == "" {
		return "file"
	}
	return name
}

func ObjectKey(name string) string {
	return "documents/" + uuid.NewString() + "/" + SanitizeName(name)
}
