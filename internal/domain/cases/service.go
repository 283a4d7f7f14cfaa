package cases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Imaging modality codes offered by the platform.
var validModalities = map[string]bool{
	"xr":     true,
	"ct":     true,
	"mri":    true,
	"us":     true,
	"nm":     true,
	"fluoro": true,
	"angio":  true,
}

var validSubspecialties = map[string]bool{
	"neuro":  true,
	"msk":    true,
	"body":   true,
	"chest":  true,
	"hn":     true,
	"nucmed": true,
	"peds":   true,
	"ir":     true,
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

func validateChoices(cs *Case) error {
	if !validModalities[cs.Modality] {
		return fmt.Errorf("invalid modality: %s", cs.Modality)
	}
	if !validSubspecialties[cs.Subspecialty] {
		return fmt.Errorf("invalid subspecialty: %s", cs.Subspecialty)
	}
	if !validDifficulties[cs.Difficulty] {
		return fmt.Errorf("invalid difficulty: %s", cs.Difficulty)
	}
	return nil
}

func (s *Service) CreateCase(ctx context.Context, cs *Case) error {
	if cs.Title == "" {
		return fmt.Errorf("title is required")
	}
	if err := validateChoices(cs); err != nil {
		return err
	}
	return s.repo.Create(ctx, cs)
}

func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*Case, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateCase(ctx context.Context, cs *Case) error {
	if cs.Title == "" {
		return fmt.Errorf("title is required")
	}
	if err := validateChoices(cs); err != nil {
		return err
	}
	return s.repo.Update(ctx, cs)
}

func (s *Service) DeleteCase(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListCases(ctx context.Context, f Filter, limit, offset int) ([]*Case, int, error) {
	if f.Modality != "" && !validModalities[f.Modality] {
		return nil, 0, fmt.Errorf("invalid modality: %s", f.Modality)
	}
	if f.Subspecialty != "" && !validSubspecialties[f.Subspecialty] {
		return nil, 0, fmt.Errorf("invalid subspecialty: %s", f.Subspecialty)
	}
	if f.Difficulty != "" && !validDifficulties[f.Difficulty] {
		return nil, 0, fmt.Errorf("invalid difficulty: %s", f.Difficulty)
	}
	return s.repo.List(ctx, f, limit, offset)
}
