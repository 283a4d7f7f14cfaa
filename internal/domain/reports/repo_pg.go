package reports

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

const reportCols = `id, case_id, author_id, content, language, status, submission_date, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, rpt *Report) error {
	rpt.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO reports (id, case_id, author_id, content, language, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rpt.ID, rpt.CaseID, rpt.AuthorID, rpt.Content, rpt.Language, rpt.Status,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id, authorID uuid.UUID) (*Report, error) {
	return scanReport(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reportCols+` FROM reports WHERE id = $1 AND author_id = $2`, id, authorID))
}

func (r *repoPG) Update(ctx context.Context, rpt *Report) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE reports SET content=$3, language=$4, status=$5, submission_date=$6, updated_at=NOW()
		WHERE id = $1 AND author_id = $2`,
		rpt.ID, rpt.AuthorID, rpt.Content, rpt.Language, rpt.Status, rpt.SubmissionDate,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("report %s: %w", rpt.ID, pgx.ErrNoRows)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM reports WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("report %s: %w", id, pgx.ErrNoRows)
	}
	return nil
}

func (r *repoPG) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM reports WHERE author_id = $1`, authorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reportCols+` FROM reports WHERE author_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		authorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Report
	for rows.Next() {
		var rpt Report
		if err := rows.Scan(&rpt.ID, &rpt.CaseID, &rpt.AuthorID, &rpt.Content, &rpt.Language,
			&rpt.Status, &rpt.SubmissionDate, &rpt.CreatedAt, &rpt.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &rpt)
	}
	return out, total, nil
}

const feedbackCols = `f.id, f.report_id, f.content, f.flagged, f.generated_at`

func (r *repoPG) UpsertFeedback(ctx context.Context, f *Feedback) error {
	f.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO feedback (id, report_id, content, flagged)
		VALUES ($1,$2,$3,false)
		ON CONFLICT (report_id) DO UPDATE
		SET content = EXCLUDED.content, flagged = false, generated_at = NOW()
		RETURNING id, flagged, generated_at`,
		f.ID, f.ReportID, f.Content,
	).Scan(&f.ID, &f.Flagged, &f.GeneratedAt)
}

func (r *repoPG) GetFeedbackByID(ctx context.Context, id, authorID uuid.UUID) (*Feedback, error) {
	return scanFeedback(r.conn(ctx).QueryRow(ctx, `
		SELECT `+feedbackCols+` FROM feedback f
		JOIN reports rp ON rp.id = f.report_id
		WHERE f.id = $1 AND rp.author_id = $2`, id, authorID))
}

func (r *repoPG) ListFeedbackByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*Feedback, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM feedback f
		JOIN reports rp ON rp.id = f.report_id
		WHERE rp.author_id = $1`, authorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+feedbackCols+` FROM feedback f
		JOIN reports rp ON rp.id = f.report_id
		WHERE rp.author_id = $1 ORDER BY f.generated_at DESC LIMIT $2 OFFSET $3`,
		authorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.ReportID, &f.Content, &f.Flagged, &f.GeneratedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &f)
	}
	return out, total, nil
}

func (r *repoPG) FlagFeedback(ctx context.Context, id, authorID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE feedback f SET flagged = true
		FROM reports rp
		WHERE f.id = $1 AND rp.id = f.report_id AND rp.author_id = $2`, id, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("feedback %s: %w", id, pgx.ErrNoRows)
	}
	return nil
}

func scanReport(row pgx.Row) (*Report, error) {
	var rpt Report
	err := row.Scan(&rpt.ID, &rpt.CaseID, &rpt.AuthorID, &rpt.Content, &rpt.Language,
		&rpt.Status, &rpt.SubmissionDate, &rpt.CreatedAt, &rpt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rpt, nil
}

func scanFeedback(row pgx.Row) (*Feedback, error) {
	var f Feedback
	err := row.Scan(&f.ID, &f.ReportID, &f.Content, &f.Flagged, &f.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
