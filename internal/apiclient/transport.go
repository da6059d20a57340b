package apiclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPClient builds the outbound HTTP client. When traced is set the transport
// propagates W3C trace context. A zero timeout leaves deadlines to the caller's context.
func NewHTTPClient(base http.RoundTripper, timeout time.Duration, traced bool) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	if traced {
		base = otelhttp.NewTransport(base,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "HTTP " + r.Method + " " + r.URL.Path
			}),
		)
	}
	return &http.Client{
		Transport: base,
		Timeout:   timeout,
	}
}
