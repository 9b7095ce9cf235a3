package acl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/wellness-service/internal/adapters/clients"
	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
	"github.com/jsamuelsen/wellness-service/internal/platform/telemetry"
)

const (
	classifierServiceName = "anthropic"
	messagesPath          = "/v1/messages"
	classifyOperation     = "classify profile"
)

var systemPrompt = "You are a health content category classifier. Reply with JSON only. " +
	"The reply must be a JSON array of category names, or an object with a \"categories\" array, " +
	"using only these categories: " + strings.Join(domain.Categories(), ", ") + "."

var userPrompt = template.Must(template.New("profile").Funcs(template.FuncMap{
	"join": func(items []string) string { return strings.Join(items, ", ") },
}).Parse(`Pick the categories relevant to this health profile.

Current status: {{ or .CurrentStatus "none given" }}
Conditions: {{ if .Conditions }}{{ join .Conditions }}{{ else }}none given{{ end }}
Goals: {{ if .Goals }}{{ join .Goals }}{{ else }}none given{{ end }}

Return only the JSON.`))

// AnthropicAuth returns a clients.Config AuthFunc that sets the messages API
// key and version headers.
func AnthropicAuth(apiKey, version string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("x-api-key", apiKey)
		r.Header.Set("anthropic-version", version)
	}
}

// ClassifierConfig holds model settings for AnthropicClassifier.
type ClassifierConfig struct {
	Model     string
	MaxTokens int
}

// AnthropicClassifier asks a Claude model which categories fit a profile.
type AnthropicClassifier struct {
	client *clients.Client
	cfg    ClassifierConfig
}

// NewAnthropicClassifier wraps an HTTP client configured with AnthropicAuth.
func NewAnthropicClassifier(client *clients.Client, cfg ClassifierConfig) *AnthropicClassifier {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 256
	}

	return &AnthropicClassifier{
		client: client,
		cfg:    cfg,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// text returns the first text block of the reply.
func (r *messagesResponse) text() (string, bool) {
	for _, block := range r.Content {
		if block.Type == "text" || block.Type == "" {
			return block.Text, true
		}
	}

	return "", false
}

// Classify returns the labels the model chose. Labels are not filtered
// against the vocabulary here. A reply that is not a category list yields an
// error wrapping domain.ErrUnparseableReply.
func (a *AnthropicClassifier) Classify(ctx context.Context, summary domain.ProfileSummary) ([]string, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "classifier.Classify",
		trace.WithAttributes(attribute.String("classifier.model", a.cfg.Model)),
	)
	defer span.End()

	logger := logging.FromContext(ctx)

	prompt, err := BuildPrompt(summary)
	if err != nil {
		return nil, err
	}

	logger.Log(ctx, logging.LevelTrace, "classifier prompt", slog.String("prompt", prompt))

	resp, err := exchange(ctx, a.client, &messagesRequest{
		Model:     a.cfg.Model,
		MaxTokens: a.cfg.MaxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	reply, ok := resp.text()
	if !ok {
		span.SetStatus(codes.Error, "no text block")
		return nil, fmt.Errorf("%w: reply has no text content", domain.ErrUnparseableReply)
	}

	logger.Log(ctx, logging.LevelTrace, "classifier reply", slog.String("reply", reply), slog.String("stop_reason", resp.StopReason))

	labels, err := domain.ParseCategoryReply(reply)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("parsing reply: %w", err)
	}

	span.SetAttributes(attribute.Int("classifier.labels", len(labels)))

	return labels, nil
}

// Name implements ports.HealthChecker.
func (a *AnthropicClassifier) Name() string {
	return "classifier"
}

// Check reports the classifier unhealthy while its circuit is open. It does
// not call the API, so readiness probes cost nothing.
func (a *AnthropicClassifier) Check(context.Context) error {
	if a.client.CircuitState() == clients.StateOpen {
		return errors.New("circuit breaker open")
	}

	return nil
}

// BuildPrompt renders the user message for a profile summary.
func BuildPrompt(summary domain.ProfileSummary) (string, error) {
	var buf bytes.Buffer
	if err := userPrompt.Execute(&buf, summary); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	return buf.String(), nil
}
