package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Intake    IntakeConfig
	Recognize RecognizeConfig
	LLM       LLMConfig
	Export    ExportConfig
}

// DatabaseConfig holds register-store configuration. The DSN decides the
// backend: a postgres:// URL opens a pgx pool, anything else is treated as a
// SQLite file path (":memory:" included).
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// IntakeConfig holds separator detection and segmentation settings.
type IntakeConfig struct {
	// SeparatorMarker is the token printed on separator pages. Matched
	// fuzzily against OCR output, never as a literal.
	SeparatorMarker string
	// MinMarkerSimilarity is the similarity floor below which a page is
	// not treated as a separator.
	MinMarkerSimilarity float64
	// Workers bounds per-document parallelism in the pipeline.
	Workers int
}

// RecognizeConfig holds case-number recognition settings.
type RecognizeConfig struct {
	// ReferenceLabels are the "Ihr Zeichen"-style field labels that give a
	// case number top recognition priority.
	ReferenceLabels []string
	// MergePolicy is "latest-wins" or "first-wins" for register uploads.
	MergePolicy string
}

// LLMConfig holds settings for the AI-extraction collaborator.
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// ExportConfig holds spreadsheet output settings.
type ExportConfig struct {
	OutputDir string
}

// defaultReferenceLabels mirror the field labels found on German legal
// correspondence. Overridable via REFERENCE_LABELS (comma-separated).
var defaultReferenceLabels = []string{
	"ihr zeichen", "unser zeichen", "ihr az", "ihr az.",
	"ihr aktenzeichen", "dortiges aktenzeichen", "verwendungszweck",
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", "posteingang.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Intake: IntakeConfig{
			SeparatorMarker:     getEnv("SEPARATOR_MARKER", "Trennseite"),
			MinMarkerSimilarity: getEnvAsFloat64("SEPARATOR_MIN_SIMILARITY", 0.80),
			Workers:             getEnvAsInt("PIPELINE_WORKERS", 4),
		},
		Recognize: RecognizeConfig{
			ReferenceLabels: getEnvAsList("REFERENCE_LABELS", defaultReferenceLabels),
			MergePolicy:     getEnv("REGISTER_MERGE_POLICY", "latest-wins"),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Export: ExportConfig{
			OutputDir: getEnv("EXPORT_DIR", "./out"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Intake.SeparatorMarker == "" {
		return NewAppError("CONFIG_ERROR", "SEPARATOR_MARKER is required", ErrInvalidInput)
	}
	if c.Intake.MinMarkerSimilarity <= 0 || c.Intake.MinMarkerSimilarity > 1 {
		return NewAppError("CONFIG_ERROR", "SEPARATOR_MIN_SIMILARITY must be in (0,1]", ErrInvalidInput)
	}
	if c.Intake.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_WORKERS must be at least 1", ErrInvalidInput)
	}
	switch c.Recognize.MergePolicy {
	case "latest-wins", "first-wins":
	default:
		return NewAppError("CONFIG_ERROR", "REGISTER_MERGE_POLICY must be latest-wins or first-wins", ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	return nil
}
