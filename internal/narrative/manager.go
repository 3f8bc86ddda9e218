package narrative

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-iris-analyzer/internal/logger"
	"go-iris-analyzer/pkg/models"
)

// Generator produces a practitioner narrative from extracted features.
// Implemented by Manager; the interface exists so the service layer can run
// without a configured language model.
type Generator interface {
	AnalyzeAll(ctx context.Context, req Request) map[string]models.PractitionerAnalysis
	AnalyzeSingle(ctx context.Context, practitioner string, req Request) (models.PractitionerAnalysis, error)
}

// Request carries everything the personas need for one reading.
type Request struct {
	LeftFeatures  *models.IrisFeatures
	RightFeatures *models.IrisFeatures
	PatientName   string
	Notes         string
	LeftImage     []byte
	RightImage    []byte
}

// Manager coordinates the practitioner personas against one model endpoint.
type Manager struct {
	client        *Client
	model         string
	timeout       time.Duration
	practitioners []Practitioner
}

func NewManager(client *Client, model string, timeout time.Duration, practitioners []Practitioner) *Manager {
	return &Manager{
		client:        client,
		model:         model,
		timeout:       timeout,
		practitioners: practitioners,
	}
}

// AnalyzeAll runs every persona concurrently. A persona that fails is
// reported with an error note instead of failing the whole reading.
func (m *Manager) AnalyzeAll(ctx context.Context, req Request) map[string]models.PractitionerAnalysis {
	results := make(map[string]models.PractitionerAnalysis, len(m.practitioners))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, p := range m.practitioners {
		wg.Add(1)
		go func(p Practitioner) {
			defer wg.Done()
			analysis := m.analyzeOne(ctx, p, req)
			mu.Lock()
			results[p.Key] = analysis
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return results
}

// AnalyzeSingle runs one persona, resolved by key or first name.
func (m *Manager) AnalyzeSingle(ctx context.Context, practitioner string, req Request) (models.PractitionerAnalysis, error) {
	p, err := FindPractitioner(m.practitioners, practitioner)
	if err != nil {
		return models.PractitionerAnalysis{}, err
	}
	return m.analyzeOne(ctx, p, req), nil
}

func (m *Manager) analyzeOne(ctx context.Context, p Practitioner, req Request) models.PractitionerAnalysis {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	prompt := buildRequest(req.LeftFeatures, req.RightFeatures, req.PatientName, req.Notes)
	var images [][]byte
	if req.RightImage != nil {
		images = append(images, req.RightImage)
	}
	if req.LeftImage != nil {
		images = append(images, req.LeftImage)
	}

	raw, err := m.client.Chat(ctx, m.model, p.systemPrompt, prompt, images)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"practitioner": p.Key,
			"model":        m.model,
		}).WithError(err).Error("Narrative generation failed")
		return unavailableAnalysis(p, err)
	}

	analysis := parseAnalysis(raw)
	analysis.PractitionerName = p.DoctorName
	analysis.Methodology = p.Methodology
	return analysis
}

func unavailableAnalysis(p Practitioner, err error) models.PractitionerAnalysis {
	return models.PractitionerAnalysis{
		PractitionerName:  p.DoctorName,
		Methodology:       p.Methodology,
		OrganCorrelations: map[string]models.TextValue{},
		ConfidenceNotes:   "Narrative generation unavailable: " + err.Error(),
	}
}
