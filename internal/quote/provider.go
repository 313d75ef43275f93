package quote

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"PortfolioGuard/internal/model"
)

// Provider fetches the current and opening price for a symbol. The
// credential is supplied per call and never stored by the caller.
type Provider interface {
	Quote(ctx context.Context, symbol, credential string) (model.Quote, error)
	Name() string
}

// Pacer is implemented by providers that throttle upstream requests.
// Callers wait before starting the time-boxed Quote call so that queueing
// for a request slot does not count against the fetch timeout.
type Pacer interface {
	Wait(ctx context.Context, symbol, credential string) error
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
