package reports

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses. A report starts as a draft, becomes submitted when the
// author sends it for feedback, and feedback_ready once feedback exists.
const (
	StatusDraft         = "draft"
	StatusSubmitted     = "submitted"
	StatusFeedbackReady = "feedback_ready"
)

// Report is a learner-authored diagnostic report for a case.
type Report struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	CaseID         uuid.UUID  `db:"case_id" json:"case_id"`
	AuthorID       uuid.UUID  `db:"author_id" json:"author_id"`
	Content        string     `db:"content" json:"content"`
	Language       string     `db:"language" json:"language"`
	Status         string     `db:"status" json:"status"`
	SubmissionDate *time.Time `db:"submission_date" json:"submission_date,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Feedback is the single feedback document attached to a report.
type Feedback struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ReportID    uuid.UUID `db:"report_id" json:"report_id"`
	Content     string    `db:"content" json:"content"`
	Flagged     bool      `db:"flagged" json:"flagged"`
	GeneratedAt time.Time `db:"generated_at" json:"generated_at"`
}
