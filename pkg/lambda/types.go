package lambda

import (
	"encoding/json"
	"errors"
	"strings"
)

const charsetUTF8 = "charset=UTF-8"

// Content types a response may carry. HTML is the default.
const (
	TypeHTML       = "text/html; " + charsetUTF8
	TypeJavaScript = "application/javascript; " + charsetUTF8
	TypeJSON       = "application/json; " + charsetUTF8
	TypeText       = "text/plain; " + charsetUTF8
)

// DefaultStatus is the status a response starts with
const DefaultStatus = 200

// PlatformRequest is the request shape delivered by the function runtime
type PlatformRequest struct {
	Method                string            `json:"httpMethod"`
	Path                  string            `json:"path"`
	PathParameters        map[string]string `json:"pathParameters"`
	QueryStringParameters map[string]string `json:"queryStringParameters"`
	Headers               map[string]string `json:"headers"`
	Body                  any               `json:"body"`
}

// PlatformResponse is the response shape the function runtime expects back
type PlatformResponse struct {
	Body   *string `json:"body"`
	Status int     `json:"status"`
	Type   string  `json:"type"`
}

// NewPlatformResponse returns a response with no body, status 200 and HTML content type
func NewPlatformResponse() *PlatformResponse {
	return &PlatformResponse{
		Status: DefaultStatus,
		Type:   TypeHTML,
	}
}

// BodyString returns the body, or "" when none was set
func (r *PlatformResponse) BodyString() string {
	if r == nil || r.Body == nil {
		return ""
	}
	return *r.Body
}

// Result is the outcome of one invocation. Exactly one field is set: Response when
// the handler answered, Request when it passed control on.
type Result struct {
	Response *PlatformResponse
	Request  *PlatformRequest
}

// IsResponse reports whether the handler answered the request itself
func (r *Result) IsResponse() bool {
	return r != nil && r.Response != nil
}

// IsContinuation reports whether the handler passed the request on
func (r *Result) IsContinuation() bool {
	return r != nil && r.Response == nil && r.Request != nil
}

// MarshalJSON emits whichever variant is set as a bare object
func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.Response != nil:
		return json.Marshal(r.Response)
	case r.Request != nil:
		return json.Marshal(r.Request)
	default:
		return nil, errors.New("empty result")
	}
}

// LookupHeader finds name in headers ignoring case and returns the key as stored.
// Gateways pass the client's casing through, so "x-request-id" and "X-Request-Id"
// both match "X-Request-ID".
func LookupHeader(headers map[string]string, name string) (key, value string, ok bool) {
	if value, ok = headers[name]; ok {
		return name, value, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return k, v, true
		}
	}
	return "", "", false
}
