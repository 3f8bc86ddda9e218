package models

import "time"

// Patient is a stored patient record.
type Patient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PatientCreate is the payload for creating or updating a patient.
type PatientCreate struct {
	Name  string `json:"name" binding:"required"`
	Notes string `json:"notes,omitempty"`
}
