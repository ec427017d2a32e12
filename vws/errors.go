package vws

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind classifies every error returned by this package. The set is closed.
//
// Kind implements error so that it can be used as an errors.Is target:
//
//	if errors.Is(err, vws.KindUnknownTarget) { ... }
type Kind int

const (
	KindUnknown Kind = iota

	// Raised locally, before any network call.
	KindValidation

	// Transport level. No response was received.
	KindConnectionFailure
	KindRequestTimeout

	// Raised by WaitForTargetProcessed.
	KindTargetProcessingTimeout

	// Not tied to a result code. These always carry a Response.
	KindServerError
	KindUnknownVWSError
	KindUnexpectedSuccessBody
	KindRequestEntityTooLarge
	KindTooManyRequests
	KindOopsAnErrorOccurredPossiblyBadName
	KindMaxNumResultsOutOfRange

	// One per documented result code.
	KindAuthenticationFailure
	KindBadImage
	KindBadRequest
	KindDateRangeError
	KindFail
	KindImageTooLarge
	KindInactiveProject
	KindInvalidAcceptHeader
	KindInvalidInstanceID
	KindInvalidTargetType
	KindMetadataTooLarge
	KindProjectHasNoAPIAccess
	KindProjectInactive
	KindProjectSuspended
	KindRequestQuotaReached
	KindRequestTimeTooSkewed
	KindTargetNameExist
	KindTargetQuotaReached
	KindTargetStatusNotSuccess
	KindTargetStatusProcessing
	KindUnknownTarget
)

var kindNames = map[Kind]string{
	KindUnknown:                            "Unknown",
	KindValidation:                         "ValidationError",
	KindConnectionFailure:                  "ConnectionFailure",
	KindRequestTimeout:                     "RequestTimeoutError",
	KindTargetProcessingTimeout:            "TargetProcessingTimeout",
	KindServerError:                        "ServerError",
	KindUnknownVWSError:                    "UnknownVWSError",
	KindUnexpectedSuccessBody:              "UnexpectedSuccessBody",
	KindRequestEntityTooLarge:              "RequestEntityTooLarge",
	KindTooManyRequests:                    "TooManyRequests",
	KindOopsAnErrorOccurredPossiblyBadName: "OopsAnErrorOccurredPossiblyBadName",
	KindMaxNumResultsOutOfRange:            "MaxNumResultsOutOfRange",
	KindAuthenticationFailure:              "AuthenticationFailure",
	KindBadImage:                           "BadImage",
	KindBadRequest:                         "BadRequest",
	KindDateRangeError:                     "DateRangeError",
	KindFail:                               "Fail",
	KindImageTooLarge:                      "ImageTooLarge",
	KindInactiveProject:                    "InactiveProject",
	KindInvalidAcceptHeader:                "InvalidAcceptHeader",
	KindInvalidInstanceID:                  "InvalidInstanceId",
	KindInvalidTargetType:                  "InvalidTargetType",
	KindMetadataTooLarge:                   "MetadataTooLarge",
	KindProjectHasNoAPIAccess:              "ProjectHasNoAPIAccess",
	KindProjectInactive:                    "ProjectInactive",
	KindProjectSuspended:                   "ProjectSuspended",
	KindRequestQuotaReached:                "RequestQuotaReached",
	KindRequestTimeTooSkewed:               "RequestTimeTooSkewed",
	KindTargetNameExist:                    "TargetNameExist",
	KindTargetQuotaReached:                 "TargetQuotaReached",
	KindTargetStatusNotSuccess:             "TargetStatusNotSuccess",
	KindTargetStatusProcessing:             "TargetStatusProcessing",
	KindUnknownTarget:                      "UnknownTarget",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Error() string { return k.String() }

// kinded is implemented by every error type in this package.
type kinded interface {
	error
	kind() Kind
}

// KindOf returns the Kind of the first error in err's chain produced by this
// package, or KindUnknown.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.kind()
	}
	return KindUnknown
}

// ResponseOf returns the Response attached to err, if any.
func ResponseOf(err error) (*Response, bool) {
	var e *Error
	if errors.As(err, &e) && e.Response != nil {
		return e.Response, true
	}
	return nil, false
}

func matchKind(k Kind, target error) bool {
	want, ok := target.(Kind)
	return ok && want == k
}

// Error is returned whenever the service answered with something other than
// the expected success. Response is never nil.
type Error struct {
	Kind     Kind
	Op       string
	Response *Response
	// Err is the underlying cause, when there is one (for example the JSON
	// decoding error behind KindUnexpectedSuccessBody).
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("vws: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Response != nil {
		fmt.Fprintf(&b, " (status %d)", e.Response.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return matchKind(e.Kind, target) }

func (e *Error) kind() Kind { return e.Kind }

// TargetID returns the target id from the request path of endpoints shaped
// like /something/{target_id}. It is meaningful for UnknownTarget,
// TargetStatusProcessing and TargetStatusNotSuccess.
func (e *Error) TargetID() string {
	path := strings.Trim(e.Response.Path(), "/")
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// TargetName returns the name sent in the request body. It is meaningful for
// TargetNameExist.
func (e *Error) TargetName() string {
	if e.Response == nil || len(e.Response.RequestBody) == 0 {
		return ""
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(e.Response.RequestBody, &body); err != nil {
		return ""
	}
	return body.Name
}

func newError(kind Kind, op string, resp *Response, cause error) *Error {
	return &Error{Kind: kind, Op: op, Response: resp, Err: cause}
}

// ValidationError reports caller input rejected before any request was made.
type ValidationError struct {
	Op     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vws: %s: invalid %s: %s", e.Op, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return matchKind(KindValidation, target) }

func (e *ValidationError) kind() Kind { return KindValidation }

func invalid(op, field, reason string) error {
	return &ValidationError{Op: op, Field: field, Reason: reason}
}

// NetworkError reports a request that produced no response: the connection
// could not be made, or no response arrived within the configured timeout.
type NetworkError struct {
	Kind    Kind // KindConnectionFailure or KindRequestTimeout
	Op      string
	Method  string
	URL     string
	Host    string
	// Budget is the time limit that was in force.
	Budget time.Duration
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Kind == KindRequestTimeout {
		return fmt.Sprintf("vws: %s: no response from %s within %s: %v", e.Op, e.Host, e.Budget, e.Err)
	}
	return fmt.Sprintf("vws: %s: connection to %s failed: %v", e.Op, e.Host, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return matchKind(e.Kind, target) }

func (e *NetworkError) kind() Kind { return e.Kind }

// Timeout reports whether the request timed out.
func (e *NetworkError) Timeout() bool { return e.Kind == KindRequestTimeout }

// TargetProcessingTimeoutError is returned when a target is still processing
// after the wait budget is spent.
type TargetProcessingTimeoutError struct {
	TargetID   string
	LastStatus TargetStatus
	Attempts   int
	Elapsed    time.Duration
}

func (e *TargetProcessingTimeoutError) Error() string {
	return fmt.Sprintf("vws: wait for target %s: still %s after %d polls (%s)",
		e.TargetID, e.LastStatus, e.Attempts, e.Elapsed.Round(time.Millisecond))
}

func (e *TargetProcessingTimeoutError) Is(target error) bool {
	return matchKind(KindTargetProcessingTimeout, target)
}

func (e *TargetProcessingTimeoutError) kind() Kind { return KindTargetProcessingTimeout }
