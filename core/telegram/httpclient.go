package telegram

import (
	"net"
	"net/http"
	"path"
	"time"

	"github.com/samber/lo"

	"github.com/m3rciful/reviewbot/core/telegram/netutil"
)

const (
	dialTimeout      = 5 * time.Second
	handshakeTimeout = 5 * time.Second
	idleTimeout      = 30 * time.Second
	headerSlack      = 15 * time.Second
	clientSlack      = 30 * time.Second
	transportRetries = 3
	retryStep        = 2 * time.Second
)

// Bot API methods with visible side effects. The transport sends them once:
// a duplicated channel post cannot be taken back.
var sendOnce = []string{"sendMessage", "editMessageText"}

// BuildHTTPClient returns the client used for Bot API calls. Both timeouts
// leave room for a full long poll window.
func BuildHTTPClient(longPoll time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: dialTimeout, KeepAlive: idleTimeout}
	return &http.Client{
		Timeout: longPoll + clientSlack,
		Transport: &retryTransport{
			base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       idleTimeout,
				TLSHandshakeTimeout:   handshakeTimeout,
				ResponseHeaderTimeout: longPoll + headerSlack,
				ExpectContinueTimeout: time.Second,
			},
			maxRetries: transportRetries,
			backoff:    retryStep,
		},
	}
}

// retryTransport repeats idempotent calls that failed on the network level
// with a linearly growing pause.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) attempts(req *http.Request) int {
	if lo.Contains(sendOnce, path.Base(req.URL.Path)) {
		return 1
	}
	if req.Body != nil && req.GetBody == nil {
		return 1
	}
	return 1 + max(t.maxRetries, 0)
}

// replay clones req with a fresh body for a repeated attempt.
func replay(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := lo.Ternary[http.RoundTripper](t.base != nil, t.base, http.DefaultTransport)
	limit := t.attempts(req)

	curr := req
	for attempt := 1; ; attempt++ {
		resp, err := base.RoundTrip(curr)
		if err == nil {
			return resp, nil
		}
		if attempt >= limit || !netutil.ShouldRetry(err) {
			return nil, err
		}
		if err := sleepCtx(req, t.backoff*time.Duration(attempt)); err != nil {
			return nil, err
		}
		if curr, err = replay(req); err != nil {
			return nil, err
		}
	}
}

func sleepCtx(req *http.Request, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
