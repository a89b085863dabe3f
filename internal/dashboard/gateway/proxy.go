package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/salesdash/salesdash-backend/pkg/errors"
	pkghttp "github.com/salesdash/salesdash-backend/pkg/httputil"
	"github.com/salesdash/salesdash-backend/pkg/logger"
)

// Proxy forwards the raw analytics endpoints to the analytics service, so a
// browser only needs to talk to the dashboard origin
type Proxy struct {
	log     *logger.Logger
	proxy   *httputil.ReverseProxy
	baseURL string
}

// NewProxy creates a reverse proxy to targetURL
func NewProxy(targetURL string, log *logger.Logger) (*Proxy, error) {
	target, err := url.Parse(targetURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid analytics URL %q", targetURL)
	}

	p := &Proxy{
		log:     log.WithComponent("gateway"),
		baseURL: targetURL,
	}

	proxy := httputil.NewSingleHostReverseProxy(target)

	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.Host = target.Host
		if id := pkghttp.GetRequestID(req.Context()); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		p.log.Error().Err(err).Str("path", r.URL.Path).Msg("proxy error")
		pkghttp.Error(w, errors.Unavailable("analytics service", err))
	}

	p.proxy = proxy
	return p, nil
}

// ServeHTTP forwards the request unchanged
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.proxy.ServeHTTP(w, r)
}
