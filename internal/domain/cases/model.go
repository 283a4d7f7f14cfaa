package cases

import (
	"time"

	"github.com/google/uuid"
)

// Case maps to the cases table. DicomPath is empty until an ingestion run
// stores files for the case.
type Case struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	Modality       string    `db:"modality" json:"modality"`
	Subspecialty   string    `db:"subspecialty" json:"subspecialty"`
	Difficulty     string    `db:"difficulty" json:"difficulty"`
	TeachingPoints string    `db:"teaching_points" json:"teaching_points"`
	DicomPath      string    `db:"dicom_path" json:"dicom_path"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Filter narrows case listings. Empty fields match everything.
type Filter struct {
	Modality     string
	Subspecialty string
	Difficulty   string
}
