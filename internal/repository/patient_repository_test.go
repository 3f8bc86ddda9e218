package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go-iris-analyzer/pkg/models"
)

func newTestRepo(t *testing.T) *FilePatientRepository {
	t.Helper()
	repo, err := NewFilePatientRepository(filepath.Join(t.TempDir(), "patients.json"))
	if err != nil {
		t.Fatalf("creating repository: %v", err)
	}
	return repo
}

func TestPatientCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.PatientCreate{Name: "Jane Doe", Notes: "first visit"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("expected first patient ID 1, got %d", created.ID)
	}
	if created.CreatedAt.IsZero() {
		t.Error("created_at must be set")
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Jane Doe" || got.Notes != "first visit" {
		t.Errorf("unexpected patient: %+v", got)
	}

	updated, err := repo.Update(ctx, created.ID, models.PatientCreate{Name: "Jane Roe", Notes: "renamed"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Jane Roe" || updated.Notes != "renamed" {
		t.Errorf("unexpected updated patient: %+v", updated)
	}
	if updated.ID != created.ID {
		t.Errorf("update must not change the ID, got %d", updated.ID)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one patient, got %d", len(list))
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, created.ID); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound after delete, got %v", err)
	}
}

func TestPatientIDsAreNotReused(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, _ := repo.Create(ctx, models.PatientCreate{Name: "A"})
	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	second, err := repo.Create(ctx, models.PatientCreate{Name: "B"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if second.ID == first.ID {
		t.Errorf("IDs must not be reused: both got %d", first.ID)
	}
}

func TestPatientNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Get(ctx, 42); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("get: expected ErrPatientNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, 42, models.PatientCreate{Name: "X"}); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("update: expected ErrPatientNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, 42); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("delete: expected ErrPatientNotFound, got %v", err)
	}
}

func TestPatientsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patients.json")
	ctx := context.Background()

	repo, err := NewFilePatientRepository(path)
	if err != nil {
		t.Fatalf("creating repository: %v", err)
	}
	if _, err := repo.Create(ctx, models.PatientCreate{Name: "Persistent"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	reopened, err := NewFilePatientRepository(path)
	if err != nil {
		t.Fatalf("reopening repository: %v", err)
	}
	list, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Persistent" {
		t.Errorf("unexpected reopened contents: %+v", list)
	}
}
