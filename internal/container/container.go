package container

import (
	"fmt"
	"net/http"

	"go-iris-analyzer/internal/config"
	"go-iris-analyzer/internal/iris"
	"go-iris-analyzer/internal/knowledge"
	"go-iris-analyzer/internal/logger"
	"go-iris-analyzer/internal/narrative"
	"go-iris-analyzer/internal/observer"
	"go-iris-analyzer/internal/repository"
	"go-iris-analyzer/internal/service"
	"go-iris-analyzer/internal/storage"
	"go-iris-analyzer/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	analyzer        *iris.Analyzer
	narrator        narrative.Generator
	imageStore      storage.ImageStore
	patients        repository.PatientRepository
	analysisService service.AnalysisService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	// Build dependency graph
	analyzer := iris.NewAnalyzer(cfg.Calibration)

	imageStore, err := storage.NewImageStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build image store: %w", err)
	}

	patients, err := repository.NewFilePatientRepository(cfg.PatientDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open patient repository: %w", err)
	}

	var narrator narrative.Generator
	if cfg.NarrativesEnabled() {
		kb, err := knowledge.Load(cfg.KnowledgeDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load knowledge base: %w", err)
		}
		client, err := narrative.NewClient(cfg.OllamaHost)
		if err != nil {
			return nil, fmt.Errorf("failed to build ollama client: %w", err)
		}
		narrator = narrative.NewManager(client, cfg.OllamaModel, cfg.NarrativeTimeout, narrative.Practitioners(kb))
	} else {
		logger.Warn("OLLAMA_HOST not set; practitioner narratives are disabled")
	}

	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(observer.NewMetricsObserver())

	analysisService := service.NewAnalysisService(analyzer, narrator, imageStore, publisher)
	handler := transport.NewHandler(analysisService, patients, cfg)

	return &Container{
		config:          cfg,
		analyzer:        analyzer,
		narrator:        narrator,
		imageStore:      imageStore,
		patients:        patients,
		analysisService: analysisService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
