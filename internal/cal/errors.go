package cal

import "fmt"

// FailureKind is CAL's own failure taxonomy (spec §4.1), distinct from the
// per-check Severity and from the run-level enginerrors taxonomy.
type FailureKind string

const (
	NotFound  FailureKind = "not_found"
	Forbidden FailureKind = "forbidden"
	Throttled FailureKind = "throttled"
	Transient FailureKind = "transient"
	Malformed FailureKind = "malformed"
	Network   FailureKind = "network"
)

// Failure is the structured error CAL operations return. Checks read
// Kind/Resource to decide severity; CauseTrace is threaded into the
// resulting CheckOutcome.
type Failure struct {
	Kind       FailureKind
	Resource   string
	Reason     string
	CauseTrace string
	Wrapped    error
}

func (f *Failure) Error() string {
	if f.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", f.Kind, f.Reason, f.Resource)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
}

func (f *Failure) Unwrap() error {
	return f.Wrapped
}

// Retryable reports whether the retry policy in spec §4.1 applies to this
// failure kind. Auth failures (Forbidden) and definitive results (NotFound,
// Malformed) never retry.
func (f *Failure) Retryable() bool {
	switch f.Kind {
	case Throttled, Transient, Network:
		return true
	default:
		return false
	}
}

func NewNotFound(resource, causeTrace string) *Failure {
	return &Failure{Kind: NotFound, Resource: resource, Reason: "resource not found", CauseTrace: causeTrace}
}

func NewForbidden(resource, causeTrace string) *Failure {
	return &Failure{Kind: Forbidden, Resource: resource, Reason: "access denied", CauseTrace: causeTrace}
}

func NewThrottled(resource, causeTrace string, wrapped error) *Failure {
	return &Failure{Kind: Throttled, Resource: resource, Reason: "rate limited", CauseTrace: causeTrace, Wrapped: wrapped}
}

func NewTransient(resource, causeTrace string, wrapped error) *Failure {
	return &Failure{Kind: Transient, Resource: resource, Reason: "transient provider error", CauseTrace: causeTrace, Wrapped: wrapped}
}

func NewMalformed(resource, reason string) *Failure {
	return &Failure{Kind: Malformed, Resource: resource, Reason: reason}
}

func NewNetwork(resource string, wrapped error) *Failure {
	return &Failure{Kind: Network, Resource: resource, Reason: "network failure", Wrapped: wrapped}
}

// ClassifyHTTPStatus maps an HTTP status code to a FailureKind per spec
// §4.1's transient/auth split.
func ClassifyHTTPStatus(status int) FailureKind {
	switch status {
	case 404:
		return NotFound
	case 401, 403:
		return Forbidden
	case 429:
		return Throttled
	case 408, 500, 502, 503, 504:
		return Transient
	default:
		if status >= 500 {
			return Transient
		}
		return Malformed
	}
}
