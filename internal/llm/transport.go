package llm

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// newHTTPClient builds the client shared by the HTTP-based providers.
// Explicit proxies win over HTTP_PROXY/HTTPS_PROXY/NO_PROXY.
func newHTTPClient(cfg Config, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: proxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
	}
}

func proxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	pc := httpproxy.FromEnvironment()
	if httpProxy != "" {
		pc.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		pc.HTTPSProxy = httpsProxy
	}
	if noProxy != "" {
		pc.NoProxy = noProxy
	}

	proxy := pc.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxy(req.URL)
	}
}
