package telegram

import (
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type flakyTransport struct {
	calls atomic.Int32
	fails int32
}

func (f *flakyTransport) RoundTrip(*http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.fails {
		return nil, timeoutErr{}
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func newRequest(t *testing.T, method string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/bot1:x/"+method, strings.NewReader("{}"))
	require.NoError(t, err)
	return req
}

func TestRetryTransportRetriesPolling(t *testing.T) {
	base := &flakyTransport{fails: 2}
	rt := &retryTransport{base: base, maxRetries: 3}

	resp, err := rt.RoundTrip(newRequest(t, "getUpdates"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(3), base.calls.Load())
}

func TestRetryTransportSendsPublishOnce(t *testing.T) {
	for _, method := range []string{"sendMessage", "editMessageText"} {
		base := &flakyTransport{fails: 1}
		rt := &retryTransport{base: base, maxRetries: 3}

		_, err := rt.RoundTrip(newRequest(t, method))
		require.Error(t, err, method)
		require.Equal(t, int32(1), base.calls.Load(), method)
	}
}
