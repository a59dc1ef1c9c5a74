// Package middleware provides ready-made shim handlers for cross-cutting concerns:
// request ids, bearer-token authentication and rate limiting. Each one either answers
// the request or passes it on, and Logged wraps an adapted function with a structured
// invocation log.
package middleware

import (
	"time"

	"github.com/sirupsen/logrus"

	"gateway-shim/pkg/lambda"
	"gateway-shim/pkg/shim"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

func newErrorResponse(req *shim.Request, errMsg, message string) ErrorResponse {
	return ErrorResponse{
		Error:     errMsg,
		Message:   message,
		RequestID: req.GetString(RequestIDKey),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// setHeader sets a request header on a copy of the header map, leaving the
// platform request's map untouched. A header already present under another casing
// keeps its key.
func setHeader(req *shim.Request, name, value string) {
	if key, _, ok := lambda.LookupHeader(req.Headers, name); ok {
		name = key
	}
	headers := make(map[string]string, len(req.Headers)+1)
	for k, v := range req.Headers {
		headers[k] = v
	}
	headers[name] = value
	req.Headers = headers
}

// respond answers with a JSON body. An encode failure has already settled the
// invocation as failed by the time JSON returns, so it is only logged.
func respond(res *shim.Response, status int, body any) {
	if err := res.Status(status).JSON(body); err != nil {
		logrus.WithError(err).WithField("status_code", status).Debug("Failed to send response")
	}
}
