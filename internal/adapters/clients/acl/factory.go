package acl

import (
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/wellness-service/internal/adapters/clients"
	"github.com/jsamuelsen/wellness-service/internal/platform/config"
)

// NewClassifierFromConfig builds the Anthropic classifier on a resilient
// client. It returns nil, nil when the classifier is disabled so callers can
// run without one.
func NewClassifierFromConfig(cfg *config.ClassifierConfig, client *config.ClientConfig, logger *slog.Logger) (*AnthropicClassifier, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	timeout := client.Timeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	version := cfg.APIVersion
	if version == "" {
		version = config.DefaultClassifierAPIVersion
	}

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.BaseURL,
		ServiceName: classifierServiceName,
		Timeout:     timeout,
		Retry:       client.Retry,
		Circuit:     client.CircuitBreaker,
		Transport:   client.Transport,
		AuthFunc:    AnthropicAuth(cfg.APIKey, version),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating classifier client: %w", err)
	}

	return NewAnthropicClassifier(httpClient, ClassifierConfig{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	}), nil
}
