package plans

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/fitmova/platform/internal/app/domain/plan"
	"github.com/fitmova/platform/pkg/logger"
)

// HTTPGenerator calls an LLM content provider over HTTP. The provider wraps
// the generated plan in a candidates envelope; the plan JSON itself lives in
// the first candidate's text part.
type HTTPGenerator struct {
	client   *http.Client
	endpoint string
	apiKey   string
	log      *logger.Logger
}

// NewHTTPGenerator constructs a generator against the provider endpoint.
func NewHTTPGenerator(client *http.Client, endpoint, apiKey string, log *logger.Logger) (*HTTPGenerator, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("plans endpoint required")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("plans-http-generator")
	}
	return &HTTPGenerator{
		client:   client,
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(apiKey),
		log:      log,
	}, nil
}

func (g *HTTPGenerator) Generate(ctx context.Context, kind plan.Kind, profile plan.Profile) (json.RawMessage, error) {
	bmi, category := plan.BMI(profile.WeightKg, profile.HeightCm)
	payload, err := json.Marshal(map[string]interface{}{
		"kind":         string(kind),
		"profile":      profile,
		"bmi":          bmi,
		"bmi_category": category,
	})
	if err != nil {
		return nil, fmt.Errorf("encode plan request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build plan request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("plan request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read plan response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("plan provider status %d", resp.StatusCode)
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text").String()
	if text == "" {
		// Some providers answer with the plan document directly.
		if gjson.ValidBytes(body) {
			return json.RawMessage(body), nil
		}
		return nil, fmt.Errorf("plan provider returned an empty candidate")
	}

	text = stripCodeFence(text)
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("plan provider returned invalid plan JSON")
	}
	return json.RawMessage(text), nil
}

// stripCodeFence unwraps ```json fences the provider sometimes adds around
// the document.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
