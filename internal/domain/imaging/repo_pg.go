package imaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radcase/radcase/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const seriesCols = `id, case_id, series_instance_uid, series_number, description, modality, created_at`

func (r *repoPG) CreateSeries(ctx context.Context, s *Series) (bool, error) {
	s.ID = uuid.New()
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO dicom_series (id, case_id, series_instance_uid, series_number, description, modality)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (series_instance_uid) DO NOTHING`,
		s.ID, s.CaseID, s.SeriesInstanceUID, s.SeriesNumber, s.Description, s.Modality,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) GetSeriesByID(ctx context.Context, id uuid.UUID) (*Series, error) {
	return scanSeries(r.conn(ctx).QueryRow(ctx,
		`SELECT `+seriesCols+` FROM dicom_series WHERE id = $1`, id))
}

func (r *repoPG) GetSeriesByUID(ctx context.Context, caseID uuid.UUID, seriesUID string) (*Series, error) {
	return scanSeries(r.conn(ctx).QueryRow(ctx,
		`SELECT `+seriesCols+` FROM dicom_series WHERE case_id = $1 AND series_instance_uid = $2`,
		caseID, seriesUID))
}

func (r *repoPG) ListSeries(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*Series, int, error) {
	where := ""
	args := []interface{}{}
	if caseID != uuid.Nil {
		where = ` WHERE case_id = $1`
		args = append(args, caseID)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM dicom_series`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	q := `SELECT ` + seriesCols + ` FROM dicom_series` + where +
		` ORDER BY series_number NULLS LAST, created_at`
	if caseID != uuid.Nil {
		q += ` LIMIT $2 OFFSET $3`
	} else {
		q += ` LIMIT $1 OFFSET $2`
	}
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Series
	for rows.Next() {
		var s Series
		if err := rows.Scan(&s.ID, &s.CaseID, &s.SeriesInstanceUID, &s.SeriesNumber,
			&s.Description, &s.Modality, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &s)
	}
	return out, total, nil
}

func (r *repoPG) DeleteSeriesByCase(ctx context.Context, caseID uuid.UUID) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM dicom_series WHERE case_id = $1`, caseID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const imageCols = `id, series_id, sop_instance_uid, instance_number, file_path, thumbnail_path, metadata, created_at`

func (r *repoPG) CreateImage(ctx context.Context, img *Image) error {
	img.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO dicom_images (id, series_id, sop_instance_uid, instance_number, file_path, thumbnail_path, metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		img.ID, img.SeriesID, img.SOPInstanceUID, img.InstanceNumber, img.FilePath, img.ThumbnailPath, img.Metadata,
	)
	return err
}

func (r *repoPG) GetImageByID(ctx context.Context, id uuid.UUID) (*Image, error) {
	var img Image
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+imageCols+` FROM dicom_images WHERE id = $1`, id).
		Scan(&img.ID, &img.SeriesID, &img.SOPInstanceUID, &img.InstanceNumber,
			&img.FilePath, &img.ThumbnailPath, &img.Metadata, &img.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *repoPG) ListImages(ctx context.Context, seriesID uuid.UUID) ([]*Image, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+imageCols+` FROM dicom_images WHERE series_id = $1
		 ORDER BY instance_number NULLS LAST, created_at`, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.SeriesID, &img.SOPInstanceUID, &img.InstanceNumber,
			&img.FilePath, &img.ThumbnailPath, &img.Metadata, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &img)
	}
	return out, nil
}

func (r *repoPG) CountImages(ctx context.Context, seriesID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM dicom_images WHERE series_id = $1`, seriesID).Scan(&n)
	return n, err
}

func (r *repoPG) ImageExistsBySOPUID(ctx context.Context, sopUID string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM dicom_images WHERE sop_instance_uid = $1)`, sopUID).Scan(&exists)
	return exists, err
}

func scanSeries(row pgx.Row) (*Series, error) {
	var s Series
	err := row.Scan(&s.ID, &s.CaseID, &s.SeriesInstanceUID, &s.SeriesNumber,
		&s.Description, &s.Modality, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
