package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gateway-shim/pkg/lambda"
	"gateway-shim/pkg/shim"
)

// RequestIDKey is the annotation key holding the request ID
const RequestIDKey = "request_id"

// RequestIDHeader is the header the request ID is read from and passed on in
const RequestIDHeader = "X-Request-ID"

// RequestID makes sure every request carries an ID, generating one when the caller
// did not send it, and passes the request on
func RequestID() shim.HandlerFunc {
	return func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
		requestID := req.Header(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			setHeader(req, RequestIDHeader, requestID)
		}

		req.Set(RequestIDKey, requestID)
		next()
	}
}

// Logged wraps an adapted function with a structured log line per invocation
func Logged(fn shim.AdaptedFunc, logger logrus.FieldLogger) shim.AdaptedFunc {
	return func(ctx context.Context, req *lambda.PlatformRequest) (*lambda.Result, error) {
		start := time.Now()
		result, err := fn(ctx, req)
		latency := time.Since(start)

		fields := logrus.Fields{
			"timestamp":  start.Format(time.RFC3339Nano),
			"latency_ms": float64(latency.Nanoseconds()) / 1000000,
		}
		if req != nil {
			fields["method"] = req.Method
			fields["path"] = req.Path
			if _, requestID, _ := lambda.LookupHeader(req.Headers, RequestIDHeader); requestID != "" {
				fields["request_id"] = requestID
			}
		}

		switch {
		case err != nil:
			fields["outcome"] = "error"
			logger.WithFields(fields).WithError(err).Error("Invocation failed")
		case result.IsContinuation():
			fields["outcome"] = "continue"
			logger.WithFields(fields).Info("Request passed on")
		default:
			status := result.Response.Status
			fields["outcome"] = "response"
			fields["status_code"] = status

			// Log based on status code
			switch {
			case status >= 500:
				logger.WithFields(fields).Error("Server error")
			case status >= 400:
				logger.WithFields(fields).Warn("Client error")
			default:
				logger.WithFields(fields).Info("Request completed")
			}
		}

		return result, err
	}
}
