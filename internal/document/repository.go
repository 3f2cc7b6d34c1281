package document

import (
	"context"

	"process-platform/internal/db"
	"process-platform/internal/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository interface {
	List(ctx context.Context, f ListFilter) ([]Document, error)
	FindByID(ctx context.Context, id int64) (*Document, error)
	Versions(ctx context.Context, documentID int64) ([]Version, error)
	FindVersion(ctx context.Context, documentID, versionID int64) (*Version, error)
	Update(ctx context.Context, id int64, in Input) (*Document, error)
	Delete(ctx context.Context, id int64) (*Document, error)
	RecordVersion(ctx context.Context, in VersionInput) (*Document, *Version, error)
}

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	pool   query.Querier
	schema *db.Provisioner
}

func NewRepository(gormDB *gorm.DB, pool query.Querier, schema *db.Provisioner) DocumentRepository {
	return &DocumentRepositoryImpl{db: gormDB, pool: pool, schema: schema}
}

func (r *DocumentRepositoryImpl) ensure(ctx context.Context) error {
	return r.schema.Ensure(ctx, db.DocumentsTable, db.DocumentVersionsTable)
}

const latestVersion = `LATERAL (
	SELECT row_to_json(v) AS latest FROM (
		SELECT dv.id, dv.document_id, dv.seq, dv.version, dv.url, dv.content_type, dv.size, dv.uploaded_by, dv.uploaded_at
		FROM document_versions dv WHERE dv.document_id = d.id
		ORDER BY dv.seq DESC, dv.id DESC LIMIT 1
	) v
) lv ON TRUE`

func listQuery() *query.Builder {
	return query.Select(
		"d.id", "d.name", "d.description", "d.process_id", "d.project_id", "d.link_type",
		"d.created_by", "d.version_seq", "d.created_at", "d.updated_at",
		"COALESCE(u.name, '') AS created_by_name",
		"COALESCE(pr.name, '') AS process_name",
		"COALESCE(pj.name, '') AS project_name",
		"(SELECT COUNT(*) FROM document_versions dv WHERE dv.document_id = d.id) AS version_count",
		"lv.latest AS latest_version",
	).
		From("documents d").
		LeftJoin("users u ON u.id = d.created_by").
		LeftJoin("processes pr ON pr.id = d.process_id").
		LeftJoin("projects pj ON pj.id = d.project_id").
		LeftJoin(latestVersion)
}

func (r *DocumentRepositoryImpl) List(ctx context.Context, f ListFilter) ([]Document, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	b := listQuery().
		Eq("d.process_id", f.ProcessID).
		Eq("d.project_id", f.ProjectID).
		Eq("d.link_type", f.LinkType).
		Eq("d.created_by", f.CreatedBy).
		Search(f.Search, "d.name", "d.description").
		OrderBy("d.updated_at DESC", "d.id DESC").
		Page(f.Limit, f.Offset)

	return query.Collect[Document](ctx, r.pool, b)
}

func (r *DocumentRepositoryImpl) FindByID(ctx context.Context, id int64) (*Document, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	return query.One[Document](ctx, r.pool, listQuery().Eq("d.id", query.Some(id)))
}

func versionsQuery() *query.Builder {
	return query.Select(
		"dv.id", "dv.document_id", "dv.seq", "dv.version", "dv.url", "dv.content_type",
		"dv.size", "dv.uploaded_by", "dv.uploaded_at",
		"COALESCE(u.name, '') AS uploaded_by_name",
	).
		From("document_versions dv").
		LeftJoin("users u ON u.id = dv.uploaded_by")
}

// Versions lists a document's versions newest first.
func (r *DocumentRepositoryImpl) Versions(ctx context.Context, documentID int64) ([]Version, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	b := versionsQuery().
		Eq("dv.document_id", query.Some(documentID)).
		OrderBy("dv.seq DESC", "dv.id DESC")
	return query.Collect[Version](ctx, r.pool, b)
}

// FindVersion returns the given version of a document, or its current
// version when versionID is 0.
func (r *DocumentRepositoryImpl) FindVersion(ctx context.Context, documentID, versionID int64) (*Version, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	b := versionsQuery().Eq("dv.document_id", query.Some(documentID))
	if versionID > 0 {
		b.Eq("dv.id", query.Some(versionID))
	}
	b.OrderBy("dv.seq DESC", "dv.id DESC").Page(1, 0)
	return query.One[Version](ctx, r.pool, b)
}

func (r *DocumentRepositoryImpl) Update(ctx context.Context, id int64, in Input) (*Document, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Model(&Document{}).Where("id = ?", id).Updates(map[string]any{
		"name":        in.Name,
		"description": in.Description,
		"process_id":  in.ProcessID,
		"project_id":  in.ProjectID,
		"link_type":   in.LinkType,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete removes the document; its versions go with it through the foreign key.
func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id int64) (*Document, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	var doc Document
	res := r.db.WithContext(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&doc)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &doc, nil
}

// RecordVersion creates the document when needed, takes the next sequence
// number and inserts the version, all in one transaction. The counter update
// locks the document row, so concurrent uploads to one document are ordered.
func (r *DocumentRepositoryImpl) RecordVersion(ctx context.Context, in VersionInput) (*Document, *Version, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, nil, err
	}

	var doc Document
	var version Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.DocumentID == nil {
			uploader := in.UploadedBy
			doc = Document{
				Name:        in.Input.Name,
				Description: in.Input.Description,
				ProcessID:   in.Input.ProcessID,
				ProjectID:   in.Input.ProjectID,
				LinkType:    in.Input.LinkType,
				CreatedBy:   &uploader,
			}
			if err := tx.Omit("version_seq").Create(&doc).Error; err != nil {
				return err
			}
		} else {
			doc.ID = *in.DocumentID
		}

		res := tx.Model(&doc).
			Clauses(clause.Returning{}).
			Where("id = ?", doc.ID).
			Updates(map[string]any{"version_seq": gorm.Expr("version_seq + 1")})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		uploader := in.UploadedBy
		version = Version{
			DocumentID:  doc.ID,
			Seq:         doc.VersionSeq,
			Version:     in.Version,
			URL:         in.URL,
			ContentType: in.ContentType,
			Size:        in.Size,
			UploadedBy:  &uploader,
		}
		if in.TicketID != "" {
			version.TicketID = &in.TicketID
		}
		return tx.Create(&version).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &doc, &version, nil
}
