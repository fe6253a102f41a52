package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-3-flash-preview"

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini is a Model backed by the Gemini API.
type Gemini struct {
	generate   generateFunc
	maxRetries int
	backoff    time.Duration
	logger     *pterm.Logger

	mu    sync.RWMutex
	model string
}

func NewGemini(ctx context.Context, apiKey, model string, logger *pterm.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{
		generate:   client.Models.GenerateContent,
		maxRetries: 3,
		backoff:    30 * time.Second,
		logger:     logger,
		model:      model,
	}, nil
}

func (g *Gemini) ModelName() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.model
}

func (g *Gemini) SetModel(model string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.model = model
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.generateWithRetry(ctx, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return resp.Text(), nil
}

// generateWithRetry retries rate-limited calls with a linearly growing wait.
func (g *Gemini) generateWithRetry(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	model := g.ModelName()
	for attempt := range g.maxRetries {
		resp, err := g.generate(ctx, model, contents, cfg)
		if err == nil {
			return resp, nil
		}
		if !isRateLimited(err) {
			return nil, err
		}
		wait := g.backoff * time.Duration(attempt+1)
		if g.logger != nil {
			g.logger.Warn("gemini rate limit hit, retrying", g.logger.Args("wait", wait, "attempt", attempt+1))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return g.generate(ctx, model, contents, cfg)
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
