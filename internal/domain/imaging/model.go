package imaging

import (
	"time"

	"github.com/google/uuid"
)

// Series maps to the dicom_series table. SeriesInstanceUID is globally
// unique across all cases.
type Series struct {
	ID                uuid.UUID `db:"id" json:"id"`
	CaseID            uuid.UUID `db:"case_id" json:"case_id"`
	SeriesInstanceUID string    `db:"series_instance_uid" json:"series_instance_uid"`
	SeriesNumber      *int      `db:"series_number" json:"series_number,omitempty"`
	Description       string    `db:"description" json:"description"`
	Modality          string    `db:"modality" json:"modality"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Image maps to the dicom_images table. Metadata holds the flat attribute
// map extracted after anonymization. ThumbnailPath is carried but never
// populated by this service.
type Image struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	SeriesID       uuid.UUID      `db:"series_id" json:"series_id"`
	SOPInstanceUID string         `db:"sop_instance_uid" json:"sop_instance_uid"`
	InstanceNumber *int           `db:"instance_number" json:"instance_number,omitempty"`
	FilePath       string         `db:"file_path" json:"file_path"`
	ThumbnailPath  *string        `db:"thumbnail_path" json:"thumbnail_path,omitempty"`
	Metadata       map[string]any `db:"metadata" json:"metadata"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// SeriesDetail is the read-API shape for a single series.
type SeriesDetail struct {
	*Series
	ImageCount int      `json:"image_count"`
	Images     []*Image `json:"images"`
}
