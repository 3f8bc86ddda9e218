package service

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "go-iris-analyzer/internal/errors"
	"go-iris-analyzer/internal/iris"
	"go-iris-analyzer/internal/narrative"
	"go-iris-analyzer/internal/observer"
	"go-iris-analyzer/internal/storage"
	"go-iris-analyzer/pkg/models"
	"go-iris-analyzer/pkg/validation"
)

// AnalysisService defines the interface for iris analysis operations
type AnalysisService interface {
	// AnalyzeIris runs feature extraction on one or both eyes and all
	// practitioner narratives
	AnalyzeIris(ctx context.Context, req AnalyzeRequest) (*models.AnalysisResponse, error)

	// AnalyzeIrisSingle runs feature extraction and one practitioner's narrative
	AnalyzeIrisSingle(ctx context.Context, practitioner string, req AnalyzeRequest) (*models.AnalysisResponse, error)

	// ProcessImage extracts features from a single image without narratives
	ProcessImage(ctx context.Context, eyeSide string, data []byte) (*models.ProcessImageResponse, error)

	// AnnotateImage renders the detected geometry over the image as PNG
	AnnotateImage(ctx context.Context, eyeSide string, data []byte) ([]byte, error)

	// PreprocessImage returns the glare-removed, contrast-enhanced image as PNG
	PreprocessImage(ctx context.Context, eyeSide string, data []byte, removeGlare, enhance bool) ([]byte, error)
}

// AnalyzeRequest carries one full analysis request.
type AnalyzeRequest struct {
	PatientName string
	Notes       string
	LeftImage   []byte
	RightImage  []byte
}

type analysisService struct {
	analyzer  *iris.Analyzer
	narrator  narrative.Generator // nil when no model endpoint is configured
	store     storage.ImageStore  // nil when archiving is disabled
	validator *validation.QualityValidator
	publisher observer.Subject
}

// NewAnalysisService creates a new iris analysis service. narrator and store
// may be nil; the corresponding features degrade gracefully.
func NewAnalysisService(
	analyzer *iris.Analyzer,
	narrator narrative.Generator,
	store storage.ImageStore,
	publisher observer.Subject,
) AnalysisService {
	return &analysisService{
		analyzer:  analyzer,
		narrator:  narrator,
		store:     store,
		validator: validation.NewQualityValidator(),
		publisher: publisher,
	}
}

// eyeResult is the outcome of processing one uploaded image.
type eyeResult struct {
	features     *models.IrisFeatures
	preprocessed []byte // PNG bytes handed to the vision model
}

func (s *analysisService) AnalyzeIris(ctx context.Context, req AnalyzeRequest) (*models.AnalysisResponse, error) {
	return s.analyze(ctx, "", req)
}

func (s *analysisService) AnalyzeIrisSingle(ctx context.Context, practitioner string, req AnalyzeRequest) (*models.AnalysisResponse, error) {
	if practitioner == "" {
		return nil, apperrors.NewValidationError("practitioner is required", nil)
	}
	return s.analyze(ctx, practitioner, req)
}

func (s *analysisService) analyze(ctx context.Context, practitioner string, req AnalyzeRequest) (*models.AnalysisResponse, error) {
	if req.LeftImage == nil && req.RightImage == nil {
		return nil, apperrors.NewValidationError("at least one iris image is required", nil)
	}
	if req.PatientName == "" {
		return nil, apperrors.NewValidationError("patient name is required", nil)
	}

	started := time.Now()
	s.notify(ctx, observer.AnalysisEvent{
		EventType:   observer.AnalysisStarted,
		Timestamp:   started,
		PatientName: req.PatientName,
	})

	var left, right *eyeResult
	g, gctx := errgroup.WithContext(ctx)
	if req.LeftImage != nil {
		g.Go(func() error {
			var err error
			left, err = s.processEye(gctx, req.LeftImage, iris.LeftEye)
			return err
		})
	}
	if req.RightImage != nil {
		g.Go(func() error {
			var err error
			right, err = s.processEye(gctx, req.RightImage, iris.RightEye)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.notify(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			Timestamp:      time.Now(),
			PatientName:    req.PatientName,
			ProcessingTime: time.Since(started),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	s.archive(ctx, req, started)

	resp := &models.AnalysisResponse{
		PatientName:          req.PatientName,
		Notes:                req.Notes,
		PractitionerAnalyses: map[string]models.PractitionerAnalysis{},
	}
	var narReq narrative.Request
	narReq.PatientName = req.PatientName
	narReq.Notes = req.Notes
	if left != nil {
		resp.ImageAnalysis.LeftIris = left.features
		narReq.LeftFeatures = left.features
		narReq.LeftImage = left.preprocessed
	}
	if right != nil {
		resp.ImageAnalysis.RightIris = right.features
		narReq.RightFeatures = right.features
		narReq.RightImage = right.preprocessed
	}

	if s.narrator != nil {
		if practitioner == "" {
			resp.PractitionerAnalyses = s.narrator.AnalyzeAll(ctx, narReq)
		} else {
			analysis, err := s.narrator.AnalyzeSingle(ctx, practitioner, narReq)
			if err != nil {
				return nil, apperrors.NewValidationError(err.Error(), err)
			}
			resp.PractitionerAnalyses[practitioner] = analysis
		}
		s.notify(ctx, observer.AnalysisEvent{
			EventType:      observer.NarrativeGenerated,
			Timestamp:      time.Now(),
			PatientName:    req.PatientName,
			ProcessingTime: time.Since(started),
			Success:        true,
		})
	} else if practitioner != "" {
		return nil, apperrors.NewProcessingError("narrative generation is not configured", nil)
	}

	s.notify(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Timestamp:      time.Now(),
		PatientName:    req.PatientName,
		ProcessingTime: time.Since(started),
		Success:        true,
	})
	return resp, nil
}

func (s *analysisService) ProcessImage(ctx context.Context, eyeSide string, data []byte) (*models.ProcessImageResponse, error) {
	side, err := parseSide(eyeSide)
	if err != nil {
		return nil, err
	}

	im, err := s.decode(data)
	if err != nil {
		return nil, err
	}
	warnings := s.validator.Warnings(im.NRGBA())

	features, err := s.analyzer.Analyze(im, side, iris.DefaultOptions())
	if err != nil {
		return nil, mapAnalyzeError(err)
	}

	return &models.ProcessImageResponse{
		EyeSide:  string(side),
		Features: features,
		Warnings: warnings,
	}, nil
}

func (s *analysisService) AnnotateImage(ctx context.Context, eyeSide string, data []byte) ([]byte, error) {
	side, err := parseSide(eyeSide)
	if err != nil {
		return nil, err
	}

	im, err := s.decode(data)
	if err != nil {
		return nil, err
	}

	processed := s.analyzer.Preprocess(im, iris.DefaultOptions())
	pupil, irisCircle := s.analyzer.Locate(processed)
	zm := iris.NewZoneMap(pupil, irisCircle, side)
	markings, _ := s.analyzer.DetectMarkings(processed, zm)

	positions := make([]models.Position, 0, len(markings))
	for _, m := range markings {
		positions = append(positions, m.Position)
	}

	// Draw on the untouched upload so the overlay matches what was sent.
	annotated, err := s.analyzer.Annotate(im, pupil, irisCircle, positions)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to annotate image", err)
	}
	return annotated, nil
}

func (s *analysisService) PreprocessImage(ctx context.Context, eyeSide string, data []byte, removeGlare, enhance bool) ([]byte, error) {
	if _, err := parseSide(eyeSide); err != nil {
		return nil, err
	}

	im, err := s.decode(data)
	if err != nil {
		return nil, err
	}

	processed := s.analyzer.Preprocess(im, iris.Options{RemoveGlare: removeGlare, Enhance: enhance})
	return encodePNG(processed)
}

// processEye runs the full extraction for one upload.
func (s *analysisService) processEye(ctx context.Context, data []byte, side iris.EyeSide) (*eyeResult, error) {
	im, err := s.decode(data)
	if err != nil {
		return nil, err
	}

	processed := s.analyzer.Preprocess(im, iris.DefaultOptions())
	features, err := s.analyzer.Analyze(im, side, iris.DefaultOptions())
	if err != nil {
		return nil, mapAnalyzeError(err)
	}

	pngBytes, err := encodePNG(processed)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, observer.AnalysisEvent{
		EventType: observer.FeaturesExtracted,
		Timestamp: time.Now(),
		EyeSide:   string(side),
		Success:   true,
	})
	return &eyeResult{features: features, preprocessed: pngBytes}, nil
}

// archive stores the original uploads. Failures are reported through the
// observer but never fail the analysis.
func (s *analysisService) archive(ctx context.Context, req AnalyzeRequest, started time.Time) {
	if s.store == nil {
		return
	}
	stamp := started.UTC().Format("20060102T150405")
	uploads := map[string][]byte{
		fmt.Sprintf("%s-%s-left", stamp, req.PatientName):  req.LeftImage,
		fmt.Sprintf("%s-%s-right", stamp, req.PatientName): req.RightImage,
	}
	for name, data := range uploads {
		if data == nil {
			continue
		}
		if _, err := s.store.Save(ctx, name, data); err != nil {
			s.notify(ctx, observer.AnalysisEvent{
				EventType:    observer.ImageArchiveFailed,
				Timestamp:    time.Now(),
				PatientName:  req.PatientName,
				ErrorMessage: err.Error(),
			})
			continue
		}
		s.notify(ctx, observer.AnalysisEvent{
			EventType:   observer.ImageArchived,
			Timestamp:   time.Now(),
			PatientName: req.PatientName,
			Success:     true,
		})
	}
}

func (s *analysisService) decode(data []byte) (*iris.Image, error) {
	im, err := iris.Decode(data, s.analyzer.Calibration().MinDimension)
	if err != nil {
		return nil, apperrors.NewDecodeError("could not decode image", err)
	}
	return im, nil
}

func (s *analysisService) notify(ctx context.Context, event observer.AnalysisEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}

func parseSide(eyeSide string) (iris.EyeSide, error) {
	side := iris.EyeSide(eyeSide)
	if !side.Valid() {
		return "", apperrors.NewValidationError("eye_side must be 'left' or 'right'", nil)
	}
	return side, nil
}

func mapAnalyzeError(err error) error {
	switch err.(type) {
	case *iris.ValidationError:
		return apperrors.NewValidationError(err.Error(), err)
	case *iris.DecodeError:
		return apperrors.NewDecodeError(err.Error(), err)
	default:
		return apperrors.NewProcessingError("iris analysis failed", err)
	}
}

func encodePNG(im *iris.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, im.NRGBA()); err != nil {
		return nil, apperrors.NewProcessingError("failed to encode image", err)
	}
	return buf.Bytes(), nil
}
