package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultRetryAfter is used for a 429 response that carries no usable Retry-After header.
const DefaultRetryAfter = 30 * time.Second

var (
	// Failure kinds. Every error returned by the client matches exactly one of these with [errors.Is].
	ErrNetwork       = errors.New("network failure")
	ErrAPI           = errors.New("API request failed")
	ErrRateLimited   = errors.New("rate limited")
	ErrDecode        = errors.New("decode failure")
	ErrConfiguration = errors.New("configuration error")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("%w: configuration not found", ErrConfiguration)
	ErrMissingCredentials = fmt.Errorf("%w: missing client credentials", ErrConfiguration)
	ErrNotAuthenticated   = fmt.Errorf("%w: not authenticated", ErrConfiguration)
	ErrNoRefreshToken     = fmt.Errorf("%w: no refresh token available", ErrConfiguration)
	ErrMissingRedirectURI = fmt.Errorf("%w: missing redirect URI", ErrConfiguration)
	ErrMissingCode        = fmt.Errorf("%w: empty authorization code", ErrConfiguration)

	// Input validation errors
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStateMismatch   = fmt.Errorf("%w: authorization state does not match", ErrInvalidArgument)
)

// NetworkError reports a request that could not complete at the transport level.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// APIError is a non-2xx response with a parseable error envelope.
type APIError struct {
	Status  int
	Message string
	Reason  string
	Method  string
	URL     string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *APIError) Is(target error) bool { return target == ErrAPI }

// RateLimitError is an [APIError] for status 429. It matches both [ErrRateLimited] and [ErrAPI].
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s; retry after %s", e.APIError.Error(), e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

func (e *RateLimitError) Unwrap() error { return e.APIError }

// DecodeError reports a body that is not JSON, or JSON without the fields required to proceed.
type DecodeError struct {
	Msg  string
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", ErrDecode, e.Msg, e.Err)
	}
	return fmt.Sprintf("%v: %s", ErrDecode, e.Msg)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// CheckResponse maps a completed HTTP exchange onto the error taxonomy. It returns nil for any 2xx status.
//
// Error envelopes come in two shapes: {"error":{"status":404,"message":"..","reason":".."}} from resource endpoints
// and {"error":"invalid_grant","error_description":".."} from the token endpoint. A body that is not JSON, or JSON
// without an "error" member, is a [DecodeError] regardless of status.
func CheckResponse(method, url string, status int, header http.Header, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	var envelope map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return &DecodeError{Msg: fmt.Sprintf("status %d with non-JSON body", status), Body: body, Err: err}
	}

	apiErr := &APIError{Status: status, Method: method, URL: url}
	switch e := envelope["error"].(type) {
	case map[string]any:
		apiErr.Message, _ = e["message"].(string)
		apiErr.Reason, _ = e["reason"].(string)
	case string:
		apiErr.Reason = e
		apiErr.Message, _ = envelope["error_description"].(string)
		if apiErr.Message == "" {
			apiErr.Message = e
		}
	default:
		return &DecodeError{Msg: fmt.Sprintf("status %d without an error envelope", status), Body: body}
	}

	if status == http.StatusTooManyRequests {
		return &RateLimitError{APIError: apiErr, RetryAfter: ParseRetryAfter(header.Get("Retry-After"), time.Now())}
	}
	return apiErr
}

// ParseRetryAfter reads a Retry-After header value, either delay-seconds or an HTTP date relative to now.
// A valid date in the past yields 0. Empty or malformed values yield [DefaultRetryAfter].
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultRetryAfter
	}

	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return DefaultRetryAfter
		}
		return time.Duration(secs) * time.Second
	}

	if t, err := http.ParseTime(v); err == nil {
		return max(t.Sub(now), 0)
	}
	return DefaultRetryAfter
}
