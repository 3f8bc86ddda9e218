package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-iris-analyzer/pkg/models"
)

// patientFile is the on-disk layout of the patient database.
type patientFile struct {
	Patients []models.Patient `json:"patients"`
	NextID   int64            `json:"next_id"`
}

// FilePatientRepository implements PatientRepository over a single JSON file.
// All operations rewrite the file under a mutex; the dataset is a practice's
// patient list, small enough that this stays comfortably fast.
type FilePatientRepository struct {
	path string
	mu   sync.Mutex
}

// NewFilePatientRepository opens or creates the patient database at path.
func NewFilePatientRepository(path string) (*FilePatientRepository, error) {
	r := &FilePatientRepository{path: path}
	if _, err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FilePatientRepository) load() (*patientFile, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return &patientFile{Patients: []models.Patient{}, NextID: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	var pf patientFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: corrupt patient database: %v", ErrRepositoryUnavailable, err)
	}
	if pf.NextID < 1 {
		pf.NextID = 1
	}
	if pf.Patients == nil {
		pf.Patients = []models.Patient{}
	}
	return &pf, nil
}

func (r *FilePatientRepository) save(pf *patientFile) error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
		}
	}
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return nil
}

func (r *FilePatientRepository) Create(ctx context.Context, p models.PatientCreate) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pf, err := r.load()
	if err != nil {
		return nil, err
	}

	patient := models.Patient{
		ID:        pf.NextID,
		Name:      p.Name,
		Notes:     p.Notes,
		CreatedAt: time.Now().UTC(),
	}
	pf.Patients = append(pf.Patients, patient)
	pf.NextID++

	if err := r.save(pf); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *FilePatientRepository) Get(ctx context.Context, id int64) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pf, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range pf.Patients {
		if pf.Patients[i].ID == id {
			p := pf.Patients[i]
			return &p, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (r *FilePatientRepository) List(ctx context.Context) ([]models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pf, err := r.load()
	if err != nil {
		return nil, err
	}
	return pf.Patients, nil
}

func (r *FilePatientRepository) Update(ctx context.Context, id int64, p models.PatientCreate) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pf, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range pf.Patients {
		if pf.Patients[i].ID == id {
			pf.Patients[i].Name = p.Name
			pf.Patients[i].Notes = p.Notes
			if err := r.save(pf); err != nil {
				return nil, err
			}
			updated := pf.Patients[i]
			return &updated, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (r *FilePatientRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pf, err := r.load()
	if err != nil {
		return err
	}
	for i := range pf.Patients {
		if pf.Patients[i].ID == id {
			pf.Patients = append(pf.Patients[:i], pf.Patients[i+1:]...)
			return r.save(pf)
		}
	}
	return ErrPatientNotFound
}
