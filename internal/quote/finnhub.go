package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PortfolioGuard/internal/model"

	"golang.org/x/time/rate"
)

// DefaultFinnhubURL is the public Finnhub API root.
const DefaultFinnhubURL = "https://finnhub.io"

// FinnhubProvider implements Provider using the Finnhub /quote endpoint.
type FinnhubProvider struct {
	BaseURL string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewFinnhubProvider creates a provider. ratePerMinute <= 0 disables rate limiting.
func NewFinnhubProvider(baseURL, proxyURL string, timeout time.Duration, ratePerMinute int) *FinnhubProvider {
	if baseURL == "" {
		baseURL = DefaultFinnhubURL
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if ratePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), 1)
	}
	return &FinnhubProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL, timeout),
		limiter: limiter,
	}
}

func (f *FinnhubProvider) Name() string { return "finnhub" }

// finnhubQuote is the subset of the /quote payload we rely on. Pointers
// distinguish a missing field from a zero price.
type finnhubQuote struct {
	Current *float64 `json:"c"`
	Open    *float64 `json:"o"`
}

// Wait blocks until the rate limiter admits one more request.
func (f *FinnhubProvider) Wait(ctx context.Context, _, _ string) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("finnhub rate limit: %w", err)
	}
	return nil
}

// Quote performs one request. It does not pace itself; callers that fan out
// call Wait first.
func (f *FinnhubProvider) Quote(ctx context.Context, symbol, credential string) (model.Quote, error) {
	values := url.Values{}
	values.Set("symbol", symbol)
	values.Set("token", credential)
	endpoint := f.BaseURL + "/api/v1/quote?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Quote{}, fmt.Errorf("create finnhub request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.Quote{}, fmt.Errorf("finnhub quote %s: %w", symbol, redact(err, credential))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Quote{}, fmt.Errorf("finnhub quote %s: status %d, body: %s", symbol, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload finnhubQuote
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.Quote{}, fmt.Errorf("decode finnhub quote %s: %w", symbol, err)
	}
	if payload.Current == nil || payload.Open == nil {
		return model.Quote{}, fmt.Errorf("finnhub quote %s: missing price fields", symbol)
	}

	q := model.Quote{Symbol: symbol, CurrentPrice: *payload.Current, OpenPrice: *payload.Open}
	if err := q.Validate(); err != nil {
		return model.Quote{}, err
	}
	return q, nil
}

// redact strips the token from transport errors, which embed the request URL.
func redact(err error, credential string) error {
	if credential == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, credential) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(msg, credential, "***"))
}
