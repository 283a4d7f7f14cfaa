package imaging

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/radcase/radcase/internal/dicom"
	"github.com/radcase/radcase/internal/platform/db"
	"github.com/radcase/radcase/internal/platform/dicomfs"
)

// ErrCaseNotFound aborts an ingestion run before any file is touched.
var ErrCaseNotFound = errors.New("case not found")

// InputFile is one uploaded candidate DICOM file.
type InputFile struct {
	Name string
	Data []byte
}

// Stats summarizes one ingestion run. TotalFiles always equals
// ProcessedFiles + SkippedFiles + ErrorFiles.
type Stats struct {
	TotalFiles     int `json:"total_files"`
	ProcessedFiles int `json:"processed_files"`
	SkippedFiles   int `json:"skipped_files"`
	ErrorFiles     int `json:"error_files"`
	SeriesCreated  int `json:"series_created"`
	ImagesCreated  int `json:"images_created"`
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeErrored
)

// Ingest runs the full pipeline for a batch of files: parse, dedupe,
// series get-or-create, anonymize, store, extract metadata, persist. All
// database work for the run happens in a single transaction; a bad file
// never aborts the run, only the case lookup does. Disk writes are not
// rolled back on transaction failure.
func (s *Service) Ingest(ctx context.Context, caseID uuid.UUID, files []InputFile) (*Stats, error) {
	stats := &Stats{TotalFiles: len(files)}

	err := db.RunInTx(ctx, s.pool, func(ctx context.Context) error {
		if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
			}
			return fmt.Errorf("load case: %w", err)
		}

		// One cache per run so a series row is resolved at most once.
		seriesCache := make(map[string]*Series)

		for _, f := range files {
			switch s.ingestFile(ctx, caseID, f, seriesCache, stats) {
			case outcomeProcessed:
				stats.ProcessedFiles++
			case outcomeSkipped:
				stats.SkippedFiles++
			case outcomeErrored:
				stats.ErrorFiles++
			}
		}

		casePath, err := s.layout.CasePath(caseID)
		if err != nil {
			return err
		}
		if err := s.caseRepo.UpdateDicomPath(ctx, caseID, casePath); err != nil {
			return fmt.Errorf("update case dicom path: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("case_id", caseID.String()).
		Int("total", stats.TotalFiles).
		Int("processed", stats.ProcessedFiles).
		Int("skipped", stats.SkippedFiles).
		Int("errors", stats.ErrorFiles).
		Msg("dicom ingestion finished")
	return stats, nil
}

func (s *Service) ingestFile(ctx context.Context, caseID uuid.UUID, f InputFile, seriesCache map[string]*Series, stats *Stats) outcome {
	ds, err := dicom.Parse(f.Data)
	if err != nil {
		s.log.Warn().Str("file", f.Name).Err(err).Msg("unreadable file, skipping")
		return outcomeSkipped
	}
	if !ds.Valid() {
		s.log.Warn().Str("file", f.Name).Msg("missing SOP or series UID, skipping")
		return outcomeSkipped
	}
	// UIDs become path components, so malformed ones are rejected before
	// any row or directory gets created for them.
	if !dicomfs.ValidUID(ds.SeriesInstanceUID) || !dicomfs.ValidUID(ds.SOPInstanceUID) {
		s.log.Error().Str("file", f.Name).
			Str("series_instance_uid", ds.SeriesInstanceUID).
			Str("sop_instance_uid", ds.SOPInstanceUID).
			Msg("malformed identifier")
		return outcomeErrored
	}

	exists, err := s.repo.ImageExistsBySOPUID(ctx, ds.SOPInstanceUID)
	if err != nil {
		s.log.Error().Str("file", f.Name).Err(err).Msg("dedupe lookup failed")
		return outcomeErrored
	}
	if exists {
		s.log.Debug().Str("sop_instance_uid", ds.SOPInstanceUID).Msg("image already ingested, skipping")
		return outcomeSkipped
	}

	series, ok := seriesCache[ds.SeriesInstanceUID]
	if !ok {
		var created bool
		series, created, err = s.getOrCreateSeries(ctx, caseID, ds)
		if err != nil {
			s.log.Error().Str("file", f.Name).Err(err).Msg("resolve series failed")
			return outcomeErrored
		}
		seriesCache[ds.SeriesInstanceUID] = series
		if created {
			stats.SeriesCreated++
		}
	}

	path, err := s.layout.ImagePath(caseID, ds.SeriesInstanceUID, ds.SOPInstanceUID)
	if err != nil {
		s.log.Error().Str("file", f.Name).Err(err).Msg("resolve storage path failed")
		return outcomeErrored
	}

	anon := dicom.Anonymize(ds)
	if err := writeDataset(anon, path); err != nil {
		s.log.Error().Str("file", f.Name).Err(err).Msg("store anonymized file failed")
		return outcomeErrored
	}

	img := &Image{
		SeriesID:       series.ID,
		SOPInstanceUID: ds.SOPInstanceUID,
		InstanceNumber: ds.InstanceNumber,
		FilePath:       path,
		Metadata:       dicom.ExtractMetadata(anon),
	}
	if err := s.repo.CreateImage(ctx, img); err != nil {
		s.log.Error().Str("file", f.Name).Err(err).Msg("persist image row failed")
		return outcomeErrored
	}

	stats.ImagesCreated++
	return outcomeProcessed
}

// getOrCreateSeries resolves the series row for (case, UID). The UID column
// is globally unique, so a lost insert race or a UID already claimed by
// another case both surface on the post-insert re-select.
func (s *Service) getOrCreateSeries(ctx context.Context, caseID uuid.UUID, ds *dicom.Dataset) (*Series, bool, error) {
	if existing, err := s.repo.GetSeriesByUID(ctx, caseID, ds.SeriesInstanceUID); err == nil {
		return existing, false, nil
	}

	series := &Series{
		CaseID:            caseID,
		SeriesInstanceUID: ds.SeriesInstanceUID,
		SeriesNumber:      ds.SeriesNumber,
		Description:       ds.SeriesDescription,
		Modality:          ds.Modality,
	}
	inserted, err := s.repo.CreateSeries(ctx, series)
	if err != nil {
		return nil, false, err
	}
	if inserted {
		return series, true, nil
	}

	existing, err := s.repo.GetSeriesByUID(ctx, caseID, ds.SeriesInstanceUID)
	if err != nil {
		return nil, false, fmt.Errorf("series %s already belongs to another case", ds.SeriesInstanceUID)
	}
	return existing, false, nil
}

func writeDataset(ds *dicom.Dataset, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ds.Write(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
