package imaging

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateSeries inserts the series unless its UID already exists
	// anywhere; it reports whether a row was inserted.
	CreateSeries(ctx context.Context, s *Series) (bool, error)
	GetSeriesByID(ctx context.Context, id uuid.UUID) (*Series, error)
	GetSeriesByUID(ctx context.Context, caseID uuid.UUID, seriesUID string) (*Series, error)
	ListSeries(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*Series, int, error)
	DeleteSeriesByCase(ctx context.Context, caseID uuid.UUID) (int64, error)

	CreateImage(ctx context.Context, img *Image) error
	GetImageByID(ctx context.Context, id uuid.UUID) (*Image, error)
	ListImages(ctx context.Context, seriesID uuid.UUID) ([]*Image, error)
	CountImages(ctx context.Context, seriesID uuid.UUID) (int, error)
	ImageExistsBySOPUID(ctx context.Context, sopUID string) (bool, error)
}
