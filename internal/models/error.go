package models

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingCredentials = errors.New("store name or api token is not set")
	ErrReportNotReady     = errors.New("no report run has completed yet")
	ErrCutoffNeedsDesc    = errors.New("cutoff requires descending sort order")
)

// upstream error classes used for diagnostics
const (
	UpstreamClassAuth       = "auth"
	UpstreamClassPermission = "permission"
	UpstreamClassRateLimit  = "rate-limit"
	UpstreamClassServer     = "server"
	UpstreamClassOther      = "other"
)

// UpstreamError is a non-2xx response from the store API
type UpstreamError struct {
	StatusCode int
	Class      string
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("upstream api: status %d (%s)", e.StatusCode, e.Class)
}

// NewUpstreamError classifies a response status code
func NewUpstreamError(code int) UpstreamError {
	class := UpstreamClassOther
	switch {
	case code == http.StatusUnauthorized:
		class = UpstreamClassAuth
	case code == http.StatusForbidden:
		class = UpstreamClassPermission
	case code == http.StatusTooManyRequests:
		class = UpstreamClassRateLimit
	case code >= http.StatusInternalServerError:
		class = UpstreamClassServer
	}
	return UpstreamError{StatusCode: code, Class: class}
}
