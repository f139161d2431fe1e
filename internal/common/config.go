package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	OCR      OCRConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	PSM           int
	OEM           int
}

// LLMConfig holds remote analysis service configuration
type LLMConfig struct {
	Provider       string // "openai" | "anthropic"
	OpenAIKey      string
	OpenAIModel    string
	VisionModel    string
	AnthropicKey   string
	AnthropicModel string
	Temperature    float32
	Timeout        time.Duration
}

// PipelineConfig holds routing thresholds and batch behavior.
// The thresholds are hand-tuned reference values, kept configurable.
type PipelineConfig struct {
	VisionThreshold  float32 // OCR confidence below which vision is preferred
	HandwrittenBelow float32 // classifier breakpoint
	PrintedFrom      float32 // classifier breakpoint
	MaxRetries       int     // extra attempts after the first, per remote extraction
	Concurrency      int     // batch worker pool size
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "vie+eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			PSM:           getEnvAsInt("TESSERACT_PSM", 0),
			OEM:           getEnvAsInt("TESSERACT_OEM", 0),
		},
		LLM: LLMConfig{
			Provider:       getEnv("LLM_PROVIDER", "openai"),
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			VisionModel:    getEnv("OPENAI_VISION_MODEL", "gpt-4o"),
			AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			Temperature:    getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			Timeout:        getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
		},
		Pipeline: PipelineConfig{
			VisionThreshold:  getEnvAsFloat32("ROUTER_VISION_THRESHOLD", 0.6),
			HandwrittenBelow: getEnvAsFloat32("CLASSIFY_HANDWRITTEN_BELOW", 0.5),
			PrintedFrom:      getEnvAsFloat32("CLASSIFY_PRINTED_FROM", 0.7),
			MaxRetries:       getEnvAsInt("EXTRACT_MAX_RETRIES", 2),
			Concurrency:      getEnvAsInt("BATCH_CONCURRENCY", 1),
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Pipeline.HandwrittenBelow >= c.Pipeline.PrintedFrom {
		return NewAppError("CONFIG_ERROR", "CLASSIFY_HANDWRITTEN_BELOW must be below CLASSIFY_PRINTED_FROM", ErrInvalidInput)
	}
	if c.Pipeline.MaxRetries < 0 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_MAX_RETRIES must be >= 0", ErrInvalidInput)
	}
	return nil
}
