package transport

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-iris-analyzer/internal/config"
	"go-iris-analyzer/internal/iris"
	"go-iris-analyzer/internal/repository"
	"go-iris-analyzer/internal/service"
	"go-iris-analyzer/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		AnalysisTimeout:    30 * time.Second,
		NarrativeTimeout:   30 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024,
	}

	patients, err := repository.NewFilePatientRepository(filepath.Join(t.TempDir(), "patients.json"))
	if err != nil {
		t.Fatalf("creating patient repository: %v", err)
	}

	analyzer := iris.NewAnalyzer(iris.DefaultCalibration())
	svc := service.NewAnalysisService(analyzer, nil, nil, nil)
	return NewHandler(svc, patients, cfg)
}

func testEyePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 300, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 300; x++ {
			img.SetNRGBA(x, y, color.NRGBA{120, 110, 90, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("writing field %s: %v", name, err)
		}
	}
	for name, data := range files {
		fw, err := w.CreateFormFile(name, name+".png")
		if err != nil {
			t.Fatalf("creating file field %s: %v", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("writing file %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["status"] != "available" {
		t.Errorf("unexpected status %q", resp["status"])
	}
}

func TestPatientLifecycle(t *testing.T) {
	h := testHandler(t)

	create := httptest.NewRequest(http.MethodPost, "/api/patients",
		strings.NewReader(`{"name": "Jane Doe", "notes": "first visit"}`))
	create.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, create)
	if rec.Code != http.StatusOK {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	var created models.Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding created patient: %v", err)
	}
	if created.ID == 0 || created.Name != "Jane Doe" {
		t.Fatalf("unexpected created patient: %+v", created)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patients/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d", rec.Code)
	}

	update := httptest.NewRequest(http.MethodPut, "/api/patients/1",
		strings.NewReader(`{"name": "Jane Roe"}`))
	update.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patients", nil))
	var list []models.Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Jane Roe" {
		t.Errorf("unexpected list: %+v", list)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/patients/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patients/1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete returned %d", rec.Code)
	}
}

func TestPatientValidation(t *testing.T) {
	h := testHandler(t)

	// Name is required.
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(`{"notes": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing name returned %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patients/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id returned %d", rec.Code)
	}
}

func TestProcessImage(t *testing.T) {
	h := testHandler(t)
	body, contentType := multipartBody(t,
		map[string]string{"eye_side": "left"},
		map[string][]byte{"iris_image": testEyePNG(t)})

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/process-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("process-image returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.ProcessImageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.EyeSide != "left" {
		t.Errorf("unexpected eye side %q", resp.EyeSide)
	}
	if resp.Features == nil || len(resp.Features.ZoneAnalysis) != 36 {
		t.Errorf("expected 36 analyzed zones, got %+v", resp.Features)
	}
}

func TestProcessImageBadSide(t *testing.T) {
	h := testHandler(t)
	body, contentType := multipartBody(t,
		map[string]string{"eye_side": "middle"},
		map[string][]byte{"iris_image": testEyePNG(t)})

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/process-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad eye_side returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProcessImageMissingFile(t *testing.T) {
	h := testHandler(t)
	body, contentType := multipartBody(t, map[string]string{"eye_side": "left"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/process-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file returned %d", rec.Code)
	}
}

func TestAnalyzeWithoutImages(t *testing.T) {
	h := testHandler(t)
	body, contentType := multipartBody(t, map[string]string{"patient_name": "Jane"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("analyze without images returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeSingleEye(t *testing.T) {
	h := testHandler(t)
	body, contentType := multipartBody(t,
		map[string]string{"patient_name": "Jane Doe", "notes": "checkup"},
		map[string][]byte{"right_iris": testEyePNG(t)})

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.PatientName != "Jane Doe" {
		t.Errorf("unexpected patient name %q", resp.PatientName)
	}
	if resp.ImageAnalysis.RightIris == nil {
		t.Error("right iris features missing")
	}
	if resp.ImageAnalysis.LeftIris != nil {
		t.Error("left iris features should be absent")
	}
	// Narratives are disabled in the test wiring.
	if len(resp.PractitionerAnalyses) != 0 {
		t.Errorf("unexpected practitioner analyses: %+v", resp.PractitionerAnalyses)
	}
}

func TestAnalyzeSinglePractitionerUnconfigured(t *testing.T) {
	h := testHandler(t)
	body, contentType := multipartBody(t,
		map[string]string{"patient_name": "Jane Doe"},
		map[string][]byte{"right_iris": testEyePNG(t)})

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/analyze/jensen", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 when narratives are not configured, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPreprocessImageReturnsPNG(t *testing.T) {
	h := testHandler(t)
	body, contentType := multipartBody(t,
		map[string]string{"eye_side": "right", "remove_glare": "false", "enhance": "false"},
		map[string][]byte{"iris_image": testEyePNG(t)})

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/preprocess-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("preprocess-image returned %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("unexpected content type %q", ct)
	}
	if _, err := png.Decode(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Errorf("response is not a valid PNG: %v", err)
	}
}

func TestAnnotateImageReturnsPNG(t *testing.T) {
	h := testHandler(t)
	body, contentType := multipartBody(t,
		map[string]string{"eye_side": "left"},
		map[string][]byte{"iris_image": testEyePNG(t)})

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/annotate-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("annotate-image returned %d: %s", rec.Code, rec.Body.String())
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 300 {
		t.Errorf("annotated image resized to %v", img.Bounds())
	}
}
