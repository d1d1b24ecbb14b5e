package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"horse.fit/mts/internal/language"
)

const (
	// DefaultEndpoint points to a local OpenAI-compatible inference endpoint.
	DefaultEndpoint = "http://127.0.0.1:8845/v1"
	// DefaultRemoteModel is the default HY-MT model name.
	DefaultRemoteModel = "tencent/HY-MT1.5-7B"
)

// OpenAIOptions configures OpenAIBackend.
type OpenAIOptions struct {
	Endpoint        string
	Model           string
	APIKey          string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// OpenAIBackend computes translations by calling an OpenAI-compatible chat
// completions endpoint, one request per job.
type OpenAIBackend struct {
	client  *openai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
}

type remoteModel struct {
	spec ModelSpec
}

func (m *remoteModel) Name() string {
	return m.spec.Name
}

// NewOpenAIBackend builds a backend for the given endpoint.
func NewOpenAIBackend(opts OpenAIOptions) *OpenAIBackend {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	cooldown := opts.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultRemoteModel
	}

	clientCfg := openai.DefaultConfig(strings.TrimSpace(opts.APIKey))
	clientCfg.BaseURL = normalizeEndpoint(opts.Endpoint)
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "engine-backend",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})

	return &OpenAIBackend{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		breaker: breaker,
	}
}

// Load records the pair a model serves. The remote endpoint holds the
// weights, so the local model files are not read here.
func (b *OpenAIBackend) Load(spec ModelSpec) (Model, error) {
	if b == nil {
		return nil, fmt.Errorf("openai backend is nil")
	}
	if strings.TrimSpace(spec.Name) == "" {
		return nil, fmt.Errorf("model name is required")
	}
	return &remoteModel{spec: spec}, nil
}

func (b *OpenAIBackend) Translate(ctx context.Context, model Model, text string) (string, error) {
	if b == nil {
		return "", fmt.Errorf("openai backend is nil")
	}
	m, ok := model.(*remoteModel)
	if !ok {
		return "", fmt.Errorf("model %s was not loaded by this backend", modelName(model))
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.complete(ctx, m.spec, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrBreakerOpen
		}
		return "", err
	}
	return out.(string), nil
}

func (b *OpenAIBackend) complete(ctx context.Context, spec ModelSpec, text string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildHYMTPrompt(text, spec.Source, spec.Target),
			},
		},
		Temperature: 0.7,
		TopP:        0.6,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion for %s: %w", spec.Name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion for %s: response missing choices", spec.Name)
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("chat completion for %s: empty translation", spec.Name)
	}
	return translated, nil
}

func buildHYMTPrompt(text, sourceLang, targetLang string) string {
	if language.NormalizeCode(sourceLang) == "zh" || language.NormalizeCode(targetLang) == "zh" {
		// HY-MT zh<=>xx template.
		return fmt.Sprintf("将以下文本翻译为%s，注意只需要输出翻译后的结果，不要额外解释：\n\n%s", language.ChineseName(targetLang), text)
	}
	// HY-MT xx<=>xx template.
	return fmt.Sprintf("Translate the following segment into %s, without additional explanation.\n\n%s", language.DisplayName(targetLang), text)
}

func normalizeEndpoint(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return DefaultEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultEndpoint
	}
	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/chat/completions")
	if path == "" {
		path = "/v1"
	}
	parsed.Path = path
	return parsed.String()
}
