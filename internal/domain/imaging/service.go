package imaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/radcase/radcase/internal/domain/cases"
	"github.com/radcase/radcase/internal/platform/dicomfs"
)

type Service struct {
	repo     Repository
	caseRepo cases.Repository
	layout   *dicomfs.Layout
	pool     *pgxpool.Pool
	log      zerolog.Logger
}

func NewService(repo Repository, caseRepo cases.Repository, layout *dicomfs.Layout, pool *pgxpool.Pool, log zerolog.Logger) *Service {
	return &Service{repo: repo, caseRepo: caseRepo, layout: layout, pool: pool, log: log}
}

func (s *Service) ListSeries(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*Series, int, error) {
	return s.repo.ListSeries(ctx, caseID, limit, offset)
}

func (s *Service) GetSeriesDetail(ctx context.Context, id uuid.UUID) (*SeriesDetail, error) {
	series, err := s.repo.GetSeriesByID(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SeriesDetail{Series: series, ImageCount: len(images), Images: images}, nil
}

func (s *Service) GetImage(ctx context.Context, id uuid.UUID) (*Image, error) {
	return s.repo.GetImageByID(ctx, id)
}

// DeleteCaseData removes every series and image row for the case and the
// case's file subtree. It reports success as a boolean; failures are logged
// rather than returned.
func (s *Service) DeleteCaseData(ctx context.Context, caseID uuid.UUID) bool {
	if _, err := s.repo.DeleteSeriesByCase(ctx, caseID); err != nil {
		s.log.Error().Err(err).Str("case_id", caseID.String()).Msg("delete dicom rows")
		return false
	}
	if err := s.layout.RemoveCase(caseID); err != nil {
		s.log.Error().Err(err).Str("case_id", caseID.String()).Msg("delete dicom files")
		return false
	}
	return true
}
