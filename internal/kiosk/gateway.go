package kiosk

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// NewGateway proxies /api/* to the API origin and everything else to the web
// origin, sending every request through transport.
func NewGateway(webURL, apiURL *url.URL, transport http.RoundTripper, log zerolog.Logger) *httputil.ReverseProxy {
	log = log.With().Str("component", "kiosk_gateway").Logger()

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			target := webURL
			if pr.In.URL.Path == "/api" || strings.HasPrefix(pr.In.URL.Path, "/api/") {
				target = apiURL
			}
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("Upstream request failed")
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}
