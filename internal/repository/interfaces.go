package repository

import (
	"context"

	"go-iris-analyzer/pkg/models"
)

// PatientRepository defines the interface for patient record operations
type PatientRepository interface {
	// Create stores a new patient and assigns its ID
	Create(ctx context.Context, p models.PatientCreate) (*models.Patient, error)

	// Get retrieves one patient by ID
	Get(ctx context.Context, id int64) (*models.Patient, error)

	// List retrieves all patients ordered by ID
	List(ctx context.Context) ([]models.Patient, error)

	// Update replaces the mutable fields of an existing patient
	Update(ctx context.Context, id int64, p models.PatientCreate) (*models.Patient, error)

	// Delete removes a patient record
	Delete(ctx context.Context, id int64) error
}
