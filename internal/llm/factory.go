package llm

import (
	"log/slog"

	"github.com/docuvault/prescription-extractor/internal/common"
	"github.com/docuvault/prescription-extractor/internal/llm/anthropic"
	"github.com/docuvault/prescription-extractor/internal/llm/openai"
)

// NewStrategies constructs the remote strategies from configuration, once, at
// startup. Absence is explicit: a missing credential leaves the corresponding
// field nil and the router degrades, it is never an error here.
func NewStrategies(cfg common.LLMConfig, logger *slog.Logger) Strategies {
	if logger == nil {
		logger = slog.Default()
	}

	var s Strategies

	var oaClient *openai.Client
	if cfg.OpenAIKey != "" {
		oaClient = openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIKey,
			Model:       cfg.OpenAIModel,
			VisionModel: cfg.VisionModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		s.Vision = oaClient
		if cfg.Provider != "anthropic" {
			s.Text = oaClient
		}
	}

	if s.Text == nil && cfg.AnthropicKey != "" {
		s.Text = anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.AnthropicKey,
			Model:       cfg.AnthropicModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	}

	// preferred provider has no credential; any constructed client beats
	// degrading the text tier to the regex fallback
	if s.Text == nil && oaClient != nil {
		logger.Warn("preferred text provider not configured; using openai for text structuring",
			"provider", cfg.Provider)
		s.Text = oaClient
	}

	if !s.TextAvailable() {
		logger.Warn("text-analysis service not configured; high-confidence documents will use the regex fallback")
	}
	if !s.VisionAvailable() {
		logger.Warn("image-analysis service not configured; handwritten content and signature detection are degraded")
	}
	return s
}
