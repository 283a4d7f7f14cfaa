package integration

import (
	"context"
	"testing"

	"github.com/radcase/radcase/internal/domain/cases"
)

func TestCaseCRUD(t *testing.T) {
	ctx := context.Background()
	repo := cases.NewRepo(globalDB.Pool)

	cs := createTestCase(t, ctx, "Acute subdural hematoma")

	got, err := repo.GetByID(ctx, cs.ID)
	if err != nil {
		t.Fatalf("get case: %v", err)
	}
	if got.Title != "Acute subdural hematoma" {
		t.Errorf("expected title to round-trip, got %q", got.Title)
	}
	if got.Modality != "ct" || got.Subspecialty != "neuro" {
		t.Errorf("unexpected classification: %s/%s", got.Modality, got.Subspecialty)
	}

	got.Difficulty = "hard"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("update case: %v", err)
	}
	updated, err := repo.GetByID(ctx, cs.ID)
	if err != nil {
		t.Fatalf("get updated case: %v", err)
	}
	if updated.Difficulty != "hard" {
		t.Errorf("expected difficulty hard, got %q", updated.Difficulty)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Error("expected updated_at to advance past created_at")
	}

	if err := repo.Delete(ctx, cs.ID); err != nil {
		t.Fatalf("delete case: %v", err)
	}
	if _, err := repo.GetByID(ctx, cs.ID); err == nil {
		t.Error("expected get after delete to fail")
	}
}

func TestCaseListFilters(t *testing.T) {
	ctx := context.Background()
	repo := cases.NewRepo(globalDB.Pool)

	cs := createTestCase(t, ctx, "Filterable case")
	t.Cleanup(func() { _ = repo.Delete(ctx, cs.ID) })

	matches, _, err := repo.List(ctx, cases.Filter{Modality: "ct", Subspecialty: "neuro"}, 100, 0)
	if err != nil {
		t.Fatalf("list cases: %v", err)
	}
	found := false
	for _, c := range matches {
		if c.ID == cs.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected matching filter to include the case")
	}

	misses, _, err := repo.List(ctx, cases.Filter{Modality: "us"}, 100, 0)
	if err != nil {
		t.Fatalf("list cases: %v", err)
	}
	for _, c := range misses {
		if c.ID == cs.ID {
			t.Error("expected non-matching filter to exclude the case")
		}
	}
}
