package domain

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrUpstream matches every *UpstreamError via errors.Is.
var ErrUpstream = errors.New("upstream fetch failed")

// UpstreamError reports a failed fetch from the badge service, either at the
// transport level (Err set) or through a non-2xx status.
type UpstreamError struct {
	StatusCode int
	StatusText string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return "Upstream fetch failed: " + causeText(e.Err)
	}
	return fmt.Sprintf("Upstream fetch failed: %d %s", e.StatusCode, e.StatusText)
}

// causeText drops the request method and URL that *url.Error prepends, so the
// upstream query string never ends up in a rendered badge.
func causeText(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Kind is the coarse class of a composition failure.
type Kind string

const (
	KindUpstream Kind = "upstream"
	KindUnknown  Kind = "unknown"
)

// KindOf classifies err. Anything that is not an upstream failure is unknown.
func KindOf(err error) Kind {
	if errors.Is(err, ErrUpstream) {
		return KindUpstream
	}
	return KindUnknown
}
