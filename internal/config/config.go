package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go-iris-analyzer/internal/iris"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	AnalysisTimeout    time.Duration
	NarrativeTimeout   time.Duration
	MaxRequestBodySize int64

	// Storage selects where uploaded images are archived: "none", "file"
	// or "azure".
	StorageBackend   string
	StorageDir       string
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string

	// Patient records
	PatientDBPath string

	// Knowledge base documents for the practitioner agents.
	KnowledgeDir string

	// Ollama endpoint for narrative generation. Empty disables narratives.
	OllamaHost  string
	OllamaModel string

	// Optional YAML file overriding the analyzer calibration.
	CalibrationFile string
	Calibration     iris.Calibration
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// NarrativesEnabled reports whether an LLM endpoint is configured.
func (c *Config) NarrativesEnabled() bool {
	return strings.TrimSpace(c.OllamaHost) != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 180*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 30*time.Second),
		NarrativeTimeout:   parseDurationOrDefault("NARRATIVE_TIMEOUT", 120*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		StorageBackend:   getEnvOrDefault("STORAGE_BACKEND", "none"),
		StorageDir:       getEnvOrDefault("STORAGE_DIR", "uploads"),
		AzureAccountName: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:  os.Getenv("AZURE_STORAGE_KEY"),
		AzureContainer:   getEnvOrDefault("AZURE_STORAGE_CONTAINER", "iris-images"),

		PatientDBPath: getEnvOrDefault("PATIENT_DB_PATH", "data/patients.json"),
		KnowledgeDir:  getEnvOrDefault("KNOWLEDGE_DIR", "knowledge"),

		OllamaHost:  os.Getenv("OLLAMA_HOST"),
		OllamaModel: getEnvOrDefault("OLLAMA_MODEL", "llama3.1"),

		CalibrationFile: os.Getenv("CALIBRATION_FILE"),
		Calibration:     iris.DefaultCalibration(),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.AnalysisTimeout <= 0 || cfg.NarrativeTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, analysis=%s, narrative=%s)",
			cfg.RequestTimeout, cfg.AnalysisTimeout, cfg.NarrativeTimeout)
	}

	switch cfg.StorageBackend {
	case "none", "file":
	case "azure":
		if cfg.AzureAccountName == "" || cfg.AzureAccountKey == "" {
			return nil, fmt.Errorf("STORAGE_BACKEND=azure requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %q", cfg.StorageBackend)
	}

	if cfg.CalibrationFile != "" {
		if err := loadCalibration(cfg.CalibrationFile, &cfg.Calibration); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadCalibration applies a YAML override file on top of the defaults; keys
// absent from the file keep their default values.
func loadCalibration(path string, cal *iris.Calibration) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading calibration file: %w", err)
	}
	if err := yaml.Unmarshal(data, cal); err != nil {
		return fmt.Errorf("parsing calibration file %s: %w", path, err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
