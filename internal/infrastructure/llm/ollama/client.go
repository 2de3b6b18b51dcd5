// Package ollama implements the completion collaborator against an Ollama
// server. Calls are rate limited, retried on transient transport failures,
// and guarded by a circuit breaker.
package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/auditscan/auditscan/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Options struct {
	// RequestsPerSecond throttles completion calls to match backend
	// capacity; zero disables throttling.
	RequestsPerSecond float64
	// HTTPTimeout is a hard upper bound per HTTP attempt; callers
	// additionally bound the whole call through the context.
	HTTPTimeout time.Duration
	Executor    *resilience.Executor
}

func New(baseURL, model string, opts Options) *Client {
	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		executor:   opts.Executor,
	}
}

// Complete sends prompt to /api/generate and returns the raw completion
// text. maxTokens maps to Ollama's num_predict.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	request := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}
	if maxTokens > 0 {
		request["options"] = map[string]any{"num_predict": maxTokens}
	}

	var response struct {
		Response string `json:"response"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", request, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.generate", call, classifyTransportError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}
