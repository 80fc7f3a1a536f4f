package ledger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/fitmova/platform/internal/app/domain/ledger"
	"github.com/fitmova/platform/pkg/logger"
)

// HTTPResolver polls a PIX payout provider for withdrawal status.
type HTTPResolver struct {
	client   *http.Client
	endpoint *url.URL
	apiKey   string
	log      *logger.Logger
}

// NewHTTPResolver constructs a resolver using the provided provider endpoint.
func NewHTTPResolver(client *http.Client, endpoint, apiKey string, log *logger.Logger) (*HTTPResolver, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("payout endpoint required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse payout endpoint: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("payout-http-resolver")
	}
	return &HTTPResolver{
		client:   client,
		endpoint: parsed,
		apiKey:   strings.TrimSpace(apiKey),
		log:      log,
	}, nil
}

func (r *HTTPResolver) Resolve(ctx context.Context, wd ledger.Withdrawal) (bool, bool, string, time.Duration, error) {
	requestURL := *r.endpoint
	q := requestURL.Query()
	q.Set("withdrawal_id", wd.ID)
	q.Set("pix_key", wd.PixKey)
	requestURL.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return false, false, "", 0, fmt.Errorf("build payout request: %w", err)
	}
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return false, false, "", 0, fmt.Errorf("payout request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, false, "", 0, fmt.Errorf("payout provider status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, false, "", 0, fmt.Errorf("read payout response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return false, false, "", 0, fmt.Errorf("payout provider returned invalid JSON")
	}

	payload := gjson.ParseBytes(body)
	retry := time.Duration(payload.Get("retry_after_seconds").Float() * float64(time.Second))
	if retry <= 0 {
		retry = 5 * time.Second
	}

	if !payload.Get("done").Bool() {
		return false, false, "", retry, nil
	}
	if payload.Get("success").Bool() {
		return true, true, payload.Get("receipt").String(), 0, nil
	}
	return true, false, payload.Get("error").String(), 0, nil
}
