package fetch

import (
	"net"
	"net/http"

	"github.com/konst007/chgk/internal/engine/types"
)

// NewClient builds an HTTP client enforcing the runtime connect and read
// timeouts. There is no overall request timeout: the body read timeout is
// applied per read by the task. Each task issues one request, so connections
// are not kept alive.
func NewClient(rt *types.RuntimeConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   rt.GetConnectTimeout(),
		KeepAlive: types.KeepAliveDuration,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   rt.GetConnectTimeout(),
		ResponseHeaderTimeout: rt.GetReadTimeout(),
		MaxIdleConns:          types.DefaultMaxIdleConns,
		IdleConnTimeout:       types.DefaultIdleConnTimeout,
		ForceAttemptHTTP2:     true,
		DisableKeepAlives:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   0,
	}
}
