package repository

import "errors"

var (
	// ErrPatientNotFound indicates the patient record does not exist
	ErrPatientNotFound = errors.New("patient not found")

	// ErrRepositoryUnavailable indicates the repository is unavailable
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
