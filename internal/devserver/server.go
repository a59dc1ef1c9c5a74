// Package devserver emulates the function runtime over plain HTTP: every request is
// turned into a platform request, run through the configured handler, and the
// result written back.
package devserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gateway-shim/pkg/lambda"
	"gateway-shim/pkg/shim"
)

// OutcomeHeader tells the caller which way the handler settled
const OutcomeHeader = "X-Shim-Outcome"

const requestIDHeader = "X-Request-ID"

// NewRouter builds a gin engine that sends every request to handler
func NewRouter(handler shim.AdaptedFunc, environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger())

	router.NoRoute(Invoke(handler))

	return router
}

// RequestID adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request.Header.Set(requestIDHeader, requestID)
		}

		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// RequestLogger logs each emulated request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logrus.WithFields(logrus.Fields{
			"timestamp":   start.Format(time.RFC3339),
			"request_id":  c.Writer.Header().Get(requestIDHeader),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"outcome":     c.Writer.Header().Get(OutcomeHeader),
			"latency":     time.Since(start),
			"client_ip":   c.ClientIP(),
		}).Info("HTTP Request")
	}
}

// Invoke runs handler for the request and renders its result
func Invoke(handler shim.AdaptedFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := ToPlatformRequest(c.Request)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
			return
		}

		result, err := handler(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}

		if result.IsContinuation() {
			c.Header(OutcomeHeader, "continue")
			c.JSON(http.StatusOK, result.Request)
			return
		}

		c.Header(OutcomeHeader, "response")
		c.Data(result.Response.Status, result.Response.Type, []byte(result.Response.BodyString()))
	}
}

func writeError(c *gin.Context, err error) {
	c.Header(OutcomeHeader, "error")

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Handler did not complete"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// ToPlatformRequest converts an HTTP request to the shape the function runtime
// delivers: single-valued query and header maps, nil when empty, and the raw body
func ToPlatformRequest(r *http.Request) (*lambda.PlatformRequest, error) {
	var body string
	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		body = string(data)
	}

	return &lambda.PlatformRequest{
		Method:                r.Method,
		Path:                  r.URL.Path,
		QueryStringParameters: firstValues(r.URL.Query()),
		Headers:               firstValues(r.Header),
		Body:                  body,
	}, nil
}

func firstValues(values map[string][]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
