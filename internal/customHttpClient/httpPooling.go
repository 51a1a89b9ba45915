package customHttpClient

import (
	"net"
	"net/http"
	"time"

	"github.com/niexiaoning/deep-searcher/internal/config"
)

// every outbound http client shares this transport so embedding and web
// loader calls reuse connections
var customTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	MaxIdleConns:          config.MaxIdleConns,
	MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
	IdleConnTimeout:       config.IdleConnTimeout,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

// NewPooledClient returns a client on the shared transport.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}

// CloseIdle drops idle connections, called on shutdown.
func CloseIdle() {
	customTransport.CloseIdleConnections()
}
