package cases

import (
	"context"
	"fmt"

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

const caseCols = `id, title, description, modality, subspecialty, difficulty,
	teaching_points, dicom_path, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, cs *Case) error {
	cs.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO cases (id, title, description, modality, subspecialty, difficulty, teaching_points, dicom_path)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		cs.ID, cs.Title, cs.Description, cs.Modality, cs.Subspecialty, cs.Difficulty, cs.TeachingPoints, cs.DicomPath,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(r.conn(ctx).QueryRow(ctx, `SELECT `+caseCols+` FROM cases WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, cs *Case) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE cases SET
			title=$2, description=$3, modality=$4, subspecialty=$5, difficulty=$6,
			teaching_points=$7, updated_at=NOW()
		WHERE id = $1`,
		cs.ID, cs.Title, cs.Description, cs.Modality, cs.Subspecialty, cs.Difficulty, cs.TeachingPoints,
	)
	return err
}

func (r *repoPG) UpdateDicomPath(ctx context.Context, id uuid.UUID, path string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE cases SET dicom_path=$2, updated_at=NOW() WHERE id = $1`, id, path)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM cases WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Case, int, error) {
	where := ""
	args := []interface{}{}
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		if where == "" {
			where = fmt.Sprintf(" WHERE %s = $%d", col, len(args))
		} else {
			where += fmt.Sprintf(" AND %s = $%d", col, len(args))
		}
	}
	add("modality", f.Modality)
	add("subspecialty", f.Subspecialty)
	add("difficulty", f.Difficulty)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM cases`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM cases%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			caseCols, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Case
	for rows.Next() {
		var c Case
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Modality, &c.Subspecialty, &c.Difficulty,
			&c.TeachingPoints, &c.DicomPath, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &c)
	}
	return out, total, nil
}

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Modality, &c.Subspecialty, &c.Difficulty,
		&c.TeachingPoints, &c.DicomPath, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
