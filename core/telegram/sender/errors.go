package sender

import (
	"context"
	"errors"
	"net"
	"regexp"

	tele "gopkg.in/telebot.v4"
)

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// ClassifyError maps a Telegram call failure to a short err_code value.
func ClassifyError(err error) string {
	var (
		flood  tele.FloodError
		api    *tele.Error
		dns    *net.DNSError
		netErr net.Error
		op     *net.OpError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &flood):
		return "flood"
	case errors.As(err, &api) && api.Code == 403:
		return "forbidden"
	case errors.As(err, &api) && api.Code >= 500:
		return "http_5xx"
	case errors.As(err, &api) && api.Code >= 400:
		return "http_4xx"
	case errors.As(err, &dns):
		return "dns"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &op) && op.Op == "dial":
		return "dial"
	}
	return "unknown"
}

// SanitizeError is err.Error() with bot tokens masked, safe to log.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}
