// Package handlers holds the handlers a deployment can be configured to run
package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"gateway-shim/internal/config"
	"gateway-shim/pkg/shim"
)

// RequestTimeKey is the annotation RequestTime sets
const RequestTimeKey = "requestTime"

// ErrorResponse is the body Broken answers with
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body Health answers with
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	DeploymentMode string    `json:"deployment_mode"`
}

// EchoResponse mirrors the framework request back to the caller
type EchoResponse struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Params  map[string]string `json:"params"`
	Query   map[string]string `json:"query"`
	Headers map[string]string `json:"headers"`
	Body    any               `json:"body"`
}

// Hello answers with a fixed greeting
func Hello() shim.HandlerFunc {
	return func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
		res.Send("Hello World!")
	}
}

// Broken answers 500 with message as the JSON error
func Broken(message string) shim.HandlerFunc {
	return func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
		if err := res.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: message}); err != nil {
			logrus.WithError(err).Debug("Failed to send error response")
		}
	}
}

// RequestTime stamps the request with the current time in milliseconds and passes
// it on
func RequestTime(now func() time.Time) shim.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
		req.Set(RequestTimeKey, now().UnixMilli())
		next()
	}
}

// Health reports liveness and build information
func Health(version string) shim.HandlerFunc {
	return func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
		err := res.JSON(HealthResponse{
			Status:         "healthy",
			Timestamp:      time.Now().UTC(),
			Version:        version,
			DeploymentMode: config.GetDeploymentMode(),
		})
		if err != nil {
			logrus.WithError(err).Debug("Failed to send health response")
		}
	}
}

// Echo answers with the request it received
func Echo() shim.HandlerFunc {
	return func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
		err := res.JSON(EchoResponse{
			Method:  req.Method,
			Path:    req.Path,
			Params:  req.Params,
			Query:   req.Query,
			Headers: req.Headers,
			Body:    req.Body,
		})
		if err != nil {
			logrus.WithError(err).Debug("Failed to send echo response")
		}
	}
}
