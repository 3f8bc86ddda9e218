package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-iris-analyzer/internal/config"
	apperrors "go-iris-analyzer/internal/errors"
	"go-iris-analyzer/internal/logger"
	"go-iris-analyzer/internal/repository"
	"go-iris-analyzer/internal/service"
	"go-iris-analyzer/pkg/models"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewHandler(analysis service.AnalysisService, patients repository.PatientRepository, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/", root)
	r.GET("/health", healthCheck)

	analysisGroup := r.Group("/api/analysis")
	{
		analysisGroup.POST("/analyze", analyzeIris(analysis, cfg))
		analysisGroup.POST("/analyze/:practitioner", analyzeIrisSingle(analysis, cfg))
		analysisGroup.POST("/process-image", processImage(analysis, cfg))
		analysisGroup.POST("/annotate-image", annotateImage(analysis, cfg))
		analysisGroup.POST("/preprocess-image", preprocessImage(analysis, cfg))
	}

	patientGroup := r.Group("/api/patients")
	{
		patientGroup.GET("", listPatients(patients))
		patientGroup.POST("", createPatient(patients))
		patientGroup.GET("/:id", getPatient(patients))
		patientGroup.PUT("/:id", updatePatient(patients))
		patientGroup.DELETE("/:id", deletePatient(patients))
	}

	return r
}

func analyzeIris(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		handleAnalyze(c, svc, cfg, "")
	}
}

func analyzeIrisSingle(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		handleAnalyze(c, svc, cfg, c.Param("practitioner"))
	}
}

func handleAnalyze(c *gin.Context, svc service.AnalysisService, cfg *config.Config, practitioner string) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
	defer cancel()

	logger.WithFields(logrus.Fields{
		"method":       c.Request.Method,
		"path":         c.Request.URL.Path,
		"practitioner": practitioner,
		"ip":           c.ClientIP(),
	}).Info("Processing iris analysis request")

	req := service.AnalyzeRequest{
		PatientName: c.PostForm("patient_name"),
		Notes:       c.PostForm("notes"),
	}
	var err error
	if req.LeftImage, err = formImage(c, "left_iris"); err != nil {
		respondError(c, http.StatusBadRequest, "invalid left_iris upload", err)
		return
	}
	if req.RightImage, err = formImage(c, "right_iris"); err != nil {
		respondError(c, http.StatusBadRequest, "invalid right_iris upload", err)
		return
	}

	var resp *models.AnalysisResponse
	if practitioner == "" {
		resp, err = svc.AnalyzeIris(ctx, req)
	} else {
		resp, err = svc.AnalyzeIrisSingle(ctx, practitioner, req)
	}
	if err != nil {
		respondServiceError(c, "analysis failed", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"patient_name":       req.PatientName,
		"practitioner":       practitioner,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
		"left":               req.LeftImage != nil,
		"right":              req.RightImage != nil,
	}).Info("Iris analysis completed successfully")

	c.JSON(http.StatusOK, resp)
}

func processImage(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.AnalysisTimeout)
		defer cancel()

		data, err := requiredFormImage(c, "iris_image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid iris_image upload", err)
			return
		}

		resp, err := svc.ProcessImage(ctx, c.PostForm("eye_side"), data)
		if err != nil {
			respondServiceError(c, "image processing failed", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func annotateImage(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.AnalysisTimeout)
		defer cancel()

		data, err := requiredFormImage(c, "iris_image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid iris_image upload", err)
			return
		}

		annotated, err := svc.AnnotateImage(ctx, c.PostForm("eye_side"), data)
		if err != nil {
			respondServiceError(c, "image annotation failed", err)
			return
		}
		c.Data(http.StatusOK, "image/png", annotated)
	}
}

func preprocessImage(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.AnalysisTimeout)
		defer cancel()

		data, err := requiredFormImage(c, "iris_image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid iris_image upload", err)
			return
		}

		removeGlare := formBool(c, "remove_glare", true)
		enhance := formBool(c, "enhance", true)

		processed, err := svc.PreprocessImage(ctx, c.PostForm("eye_side"), data, removeGlare, enhance)
		if err != nil {
			respondServiceError(c, "image preprocessing failed", err)
			return
		}
		c.Data(http.StatusOK, "image/png", processed)
	}
}

func listPatients(repo repository.PatientRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		patients, err := repo.List(c.Request.Context())
		if err != nil {
			respondRepoError(c, err)
			return
		}
		c.JSON(http.StatusOK, patients)
	}
}

func createPatient(repo repository.PatientRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PatientCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		patient, err := repo.Create(c.Request.Context(), req)
		if err != nil {
			respondRepoError(c, err)
			return
		}
		c.JSON(http.StatusOK, patient)
	}
}

func getPatient(repo repository.PatientRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := patientID(c)
		if err != nil {
			return
		}
		patient, err := repo.Get(c.Request.Context(), id)
		if err != nil {
			respondRepoError(c, err)
			return
		}
		c.JSON(http.StatusOK, patient)
	}
}

func updatePatient(repo repository.PatientRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := patientID(c)
		if err != nil {
			return
		}
		var req models.PatientCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		patient, err := repo.Update(c.Request.Context(), id, req)
		if err != nil {
			respondRepoError(c, err)
			return
		}
		c.JSON(http.StatusOK, patient)
	}
}

func deletePatient(repo repository.PatientRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := patientID(c)
		if err != nil {
			return
		}
		if err := repo.Delete(c.Request.Context(), id); err != nil {
			respondRepoError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Patient deleted successfully"})
	}
}

func root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Iris Analyzer API",
		"status":  "running",
		"version": "1.0.0",
	})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Form helpers

func patientID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid patient id", err)
		return 0, err
	}
	return id, nil
}

// formImage reads an optional multipart file field; a missing field returns
// (nil, nil).
func formImage(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		// Gin surfaces an absent field on an otherwise valid form the same
		// way; only bail out when the form itself is unreadable.
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		return nil, nil
	}
	return readUpload(fh)
}

func requiredFormImage(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s file is required: %w", field, err)
	}
	return readUpload(fh)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formBool(c *gin.Context, field string, def bool) bool {
	v := c.PostForm(field)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, message string, err error) {
	respondError(c, apperrors.GetStatusCode(err), message, err)
}

func respondRepoError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrPatientNotFound) {
		respondError(c, http.StatusNotFound, "patient not found", err)
		return
	}
	respondError(c, http.StatusInternalServerError, "patient store failed", err)
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
