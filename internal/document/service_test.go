package document

import (
	"context"
	"net/http"
	"testing"

	apiError "process-platform/internal/errors"
	"process-platform/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepository keeps documents and versions in memory and mimics the
// per-document sequence counter.
type fakeRepository struct {
	docs     map[int64]*Document
	versions map[int64][]Version
	nextDoc  int64
	nextVer  int64
	finds    int
	tickets  map[string]bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{docs: map[int64]*Document{}, versions: map[int64][]Version{}, tickets: map[string]bool{}}
}

func (r *fakeRepository) List(ctx context.Context, f ListFilter) ([]Document, error) {
	out := []Document{}
	for _, d := range r.docs {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeRepository) FindByID(ctx context.Context, id int64) (*Document, error) {
	r.finds++
	d, ok := r.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	cp.VersionCount = int64(len(r.versions[id]))
	return &cp, nil
}

func (r *fakeRepository) Versions(ctx context.Context, documentID int64) ([]Version, error) {
	vs := r.versions[documentID]
	out := make([]Version, 0, len(vs))
	for i := len(vs) - 1; i >= 0; i-- {
		out = append(out, vs[i])
	}
	return out, nil
}

func (r *fakeRepository) FindVersion(ctx context.Context, documentID, versionID int64) (*Version, error) {
	vs := r.versions[documentID]
	if len(vs) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	if versionID == 0 {
		return &vs[len(vs)-1], nil
	}
	for i := range vs {
		if vs[i].ID == versionID {
			return &vs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) Update(ctx context.Context, id int64, in Input) (*Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	d.Name, d.Description, d.LinkType = in.Name, in.Description, in.LinkType
	return r.FindByID(ctx, id)
}

func (r *fakeRepository) Delete(ctx context.Context, id int64) (*Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(r.docs, id)
	delete(r.versions, id)
	return d, nil
}

func (r *fakeRepository) RecordVersion(ctx context.Context, in VersionInput) (*Document, *Version, error) {
	if in.TicketID != "" {
		if r.tickets[in.TicketID] {
			return nil, nil, &pgconn.PgError{Code: "23505", ConstraintName: "document_versions_ticket_id_key"}
		}
		r.tickets[in.TicketID] = true
	}
	var doc *Document
	if in.DocumentID == nil {
		r.nextDoc++
		uploader := in.UploadedBy
		doc = &Document{ID: r.nextDoc, Name: in.Input.Name, LinkType: in.Input.LinkType, CreatedBy: &uploader}
		r.docs[doc.ID] = doc
	} else {
		var ok bool
		if doc, ok = r.docs[*in.DocumentID]; !ok {
			return nil, nil, gorm.ErrRecordNotFound
		}
	}
	doc.VersionSeq++
	r.nextVer++
	v := Version{ID: r.nextVer, DocumentID: doc.ID, Seq: doc.VersionSeq, Version: in.Version, URL: in.URL}
	r.versions[doc.ID] = append(r.versions[doc.ID], v)
	cp := *doc
	return &cp, &v, nil
}

func newCache(t *testing.T) *redis.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redis.NewCache(client)
}

func TestRecordVersion_NewDocument(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	doc, v, err := svc.RecordVersion(context.Background(), VersionInput{
		Input:      Input{Name: " Policy "},
		Version:    "v1",
		URL:        "http://blob/documents/a/policy.pdf",
		UploadedBy: 3,
	})

	require.NoError(t, err)
	assert.Len(t, repo.docs, 1)
	assert.Equal(t, "Policy", doc.Name)
	assert.Equal(t, "process", doc.LinkType)
	assert.Equal(t, int64(1), v.Seq)
}

func TestRecordVersion_ExistingDocumentAddsOneVersion(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	doc, _, err := svc.RecordVersion(ctx, VersionInput{Input: Input{Name: "Policy"}, Version: "v1", URL: "u1", UploadedBy: 3})
	require.NoError(t, err)

	id := doc.ID
	_, v2, err := svc.RecordVersion(ctx, VersionInput{DocumentID: &id, Version: "v2", URL: "u2", UploadedBy: 3})
	require.NoError(t, err)

	assert.Len(t, repo.docs, 1)
	assert.Len(t, repo.versions[id], 2)
	assert.Equal(t, int64(2), v2.Seq)

	detail, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v2", detail.Versions[0].Version)
}

func TestRecordVersion_RequiresLabel(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	_, _, err := svc.RecordVersion(context.Background(), VersionInput{Input: Input{Name: "Policy"}, Version: "  ", URL: "u"})

	var appErr *apiError.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "version", appErr.Details)
	assert.Empty(t, repo.docs)
}

func TestRecordVersion_UnknownDocument(t *testing.T) {
	svc := NewService(newFakeRepository(), nil)
	missing := int64(42)

	_, _, err := svc.RecordVersion(context.Background(), VersionInput{DocumentID: &missing, Version: "v1", URL: "u"})

	var appErr *apiError.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestRecordVersion_TicketRecordedOnce(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	in := VersionInput{Input: Input{Name: "Policy"}, Version: "v1", URL: "u", UploadedBy: 1, TicketID: "jti-1"}

	_, _, err := svc.RecordVersion(context.Background(), in)
	require.NoError(t, err)
	_, _, err = svc.RecordVersion(context.Background(), in)

	var appErr *apiError.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "Upload already completed", appErr.Message)
	assert.Len(t, repo.docs, 1)
}

func TestGet_CachedUntilNewVersion(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, newCache(t))
	ctx := context.Background()

	doc, _, err := svc.RecordVersion(ctx, VersionInput{Input: Input{Name: "Policy"}, Version: "v1", URL: "u1", UploadedBy: 1})
	require.NoError(t, err)
	id := doc.ID

	_, err = svc.Get(ctx, id)
	require.NoError(t, err)
	_, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.finds, "second read is served from cache")

	_, _, err = svc.RecordVersion(ctx, VersionInput{DocumentID: &id, Version: "v2", URL: "u2", UploadedBy: 1})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.finds)
	assert.Len(t, detail.Versions, 2)
}
