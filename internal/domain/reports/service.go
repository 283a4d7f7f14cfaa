package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radcase/radcase/internal/platform/db"
)

// ErrNotDraft rejects submission of a report that already left the draft
// state.
var ErrNotDraft = errors.New("report is not in draft status")

// feedbackContent is the placeholder feedback attached to every submitted
// report until a real generation backend exists.
const feedbackContent = `# Feedback on Your Report

Thank you for submitting your diagnostic report. Here is some feedback to help you improve:

## Key Findings
Your report correctly identified most of the important findings. Good job on noting the primary pathology.

## Areas for Improvement
Consider including measurements of any abnormalities you observe. Also, be more specific in your description of location.

## Teaching Points
This case demonstrates classic features of the pathology. Remember that these findings often appear together and form a recognized pattern.

## Overall Assessment
This is a solid report with good structure. Continue to work on being comprehensive yet concise.
`

type Service struct {
	repo Repository
	pool *pgxpool.Pool
}

func NewService(repo Repository, pool *pgxpool.Pool) *Service {
	return &Service{repo: repo, pool: pool}
}

func (s *Service) CreateReport(ctx context.Context, rpt *Report) error {
	if rpt.CaseID == uuid.Nil {
		return fmt.Errorf("case_id is required")
	}
	if rpt.AuthorID == uuid.Nil {
		return fmt.Errorf("author_id is required")
	}
	if rpt.Content == "" {
		return fmt.Errorf("content is required")
	}
	if rpt.Language == "" {
		rpt.Language = "en"
	}
	rpt.Status = StatusDraft
	return s.repo.Create(ctx, rpt)
}

func (s *Service) GetReport(ctx context.Context, id, authorID uuid.UUID) (*Report, error) {
	return s.repo.GetByID(ctx, id, authorID)
}

func (s *Service) UpdateReport(ctx context.Context, rpt *Report) error {
	existing, err := s.repo.GetByID(ctx, rpt.ID, rpt.AuthorID)
	if err != nil {
		return err
	}
	if rpt.Content == "" {
		return fmt.Errorf("content is required")
	}
	if rpt.Language == "" {
		rpt.Language = existing.Language
	}
	// Status and submission date are owned by the submit flow.
	rpt.Status = existing.Status
	rpt.SubmissionDate = existing.SubmissionDate
	return s.repo.Update(ctx, rpt)
}

func (s *Service) DeleteReport(ctx context.Context, id, authorID uuid.UUID) error {
	return s.repo.Delete(ctx, id, authorID)
}

func (s *Service) ListReports(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	return s.repo.ListByAuthor(ctx, authorID, limit, offset)
}

// SubmitReport moves a draft report through submitted to feedback_ready,
// stamping the submission date and generating the feedback document. The
// whole transition is one transaction.
func (s *Service) SubmitReport(ctx context.Context, id, authorID uuid.UUID) (*Report, error) {
	var result *Report
	err := db.RunInTx(ctx, s.pool, func(ctx context.Context) error {
		rpt, err := s.repo.GetByID(ctx, id, authorID)
		if err != nil {
			return err
		}
		if rpt.Status != StatusDraft {
			return ErrNotDraft
		}

		now := time.Now().UTC()
		rpt.Status = StatusSubmitted
		rpt.SubmissionDate = &now
		if err := s.repo.Update(ctx, rpt); err != nil {
			return err
		}

		fb := &Feedback{ReportID: rpt.ID, Content: feedbackContent}
		if err := s.repo.UpsertFeedback(ctx, fb); err != nil {
			return fmt.Errorf("generate feedback: %w", err)
		}

		rpt.Status = StatusFeedbackReady
		if err := s.repo.Update(ctx, rpt); err != nil {
			return err
		}
		result = rpt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) GetFeedback(ctx context.Context, id, authorID uuid.UUID) (*Feedback, error) {
	return s.repo.GetFeedbackByID(ctx, id, authorID)
}

func (s *Service) ListFeedback(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*Feedback, int, error) {
	return s.repo.ListFeedbackByAuthor(ctx, authorID, limit, offset)
}

func (s *Service) FlagFeedback(ctx context.Context, id, authorID uuid.UUID) error {
	return s.repo.FlagFeedback(ctx, id, authorID)
}
