package document

import (
	"context"
	"sort"
	"sync"
	"testing"

	"process-platform/internal/db"
	apiError "process-platform/internal/errors"
	"process-platform/internal/testutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.NewProvisioner(pool).Ensure(ctx, db.UsersTable))
	var id int64
	require.NoError(t, pool.QueryRow(ctx,
		"INSERT INTO users (name, email) VALUES ('Uploader', 'uploader@example.com') RETURNING id").Scan(&id))
	return id
}

func TestRecordVersion_Postgres(t *testing.T) {
	pool, gormDB := testutil.Postgres(t)
	repo := NewRepository(gormDB, pool, db.NewProvisioner(pool))
	ctx := context.Background()
	uploader := seedUser(t, pool)

	doc, first, err := repo.RecordVersion(ctx, VersionInput{
		Input:      Input{Name: "Policy", LinkType: "process"},
		Version:    "v1",
		URL:        "http://blob.local/documents/a/policy.pdf",
		UploadedBy: uploader,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Seq)

	const uploads = 8
	var wg sync.WaitGroup
	seqs := make([]int64, uploads)
	errs := make([]error, uploads)
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := doc.ID
			_, v, err := repo.RecordVersion(ctx, VersionInput{DocumentID: &id, Version: "v", URL: "u", UploadedBy: uploader})
			errs[i] = err
			if err == nil {
				seqs[i] = v.Seq
			}
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	sort.Slice(seqs, func(a, b int) bool { return seqs[a] < seqs[b] })
	for i, seq := range seqs {
		assert.Equal(t, int64(i+2), seq)
	}

	versions, err := repo.Versions(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, versions, uploads+1)
	assert.Equal(t, int64(uploads+1), versions[0].Seq)

	latest, err := repo.FindVersion(ctx, doc.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, versions[0].ID, latest.ID)

	docs, err := repo.List(ctx, ListFilter{Limit: 50})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, int64(uploads+1), docs[0].VersionCount)
}

func TestRecordVersion_PostgresUnknownDocumentLeavesNothing(t *testing.T) {
	pool, gormDB := testutil.Postgres(t)
	repo := NewRepository(gormDB, pool, db.NewProvisioner(pool))
	ctx := context.Background()

	uploader := seedUser(t, pool)

	missing := int64(12345)
	_, _, err := repo.RecordVersion(ctx, VersionInput{DocumentID: &missing, Version: "v1", URL: "u", UploadedBy: uploader})
	assert.Error(t, err)

	var count int64
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM document_versions").Scan(&count))
	assert.Zero(t, count)
}

func TestRecordVersion_PostgresTicketOnce(t *testing.T) {
	pool, gormDB := testutil.Postgres(t)
	repo := NewRepository(gormDB, pool, db.NewProvisioner(pool))
	ctx := context.Background()
	uploader := seedUser(t, pool)

	in := VersionInput{
		Input:      Input{Name: "Policy", LinkType: "process"},
		Version:    "v1",
		URL:        "u",
		UploadedBy: uploader,
		TicketID:   "6f1c7a52-2b1e-4d0b-9d55-8c1f0e3e2a10",
	}
	_, _, err := repo.RecordVersion(ctx, in)
	require.NoError(t, err)
	_, _, err = repo.RecordVersion(ctx, in)
	assert.True(t, apiError.IsUniqueViolation(err))

	var docs, versions int64
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&docs))
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM document_versions").Scan(&versions))
	assert.Equal(t, int64(1), docs)
	assert.Equal(t, int64(1), versions)
}
