package provider

import "fmt"

// ErrorKind classifies upstream HTTP failures.
type ErrorKind string

const (
	KindRateLimited  ErrorKind = "rate_limited"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindTimeout      ErrorKind = "timeout"
	KindUnknown      ErrorKind = "unknown"
)

// UpstreamError is a clean HTTP error status from the provider. It is never
// retried: the provider answered, just not with data.
type UpstreamError struct {
	Status int
	Kind   ErrorKind
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d (%s)", e.Status, e.Kind)
}

// classifyStatus maps a provider HTTP status onto an error kind.
func classifyStatus(status int) ErrorKind {
	switch status {
	case 429:
		return KindRateLimited
	case 401:
		return KindUnauthorized
	case 403:
		return KindForbidden
	case 408, 504:
		return KindTimeout
	default:
		return KindUnknown
	}
}

// TransportError is a connection-level failure (dial error, reset, request
// timeout). Eligible for retry in multi-page mode.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
