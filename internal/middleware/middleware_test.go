package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gateway-shim/pkg/lambda"
	"gateway-shim/pkg/shim"
)

func init() {
	logrus.SetOutput(io.Discard)
}

func run(t *testing.T, handler shim.HandlerFunc, req *lambda.PlatformRequest) *lambda.Result {
	t.Helper()
	result, err := shim.Wrap(handler)(context.Background(), req)
	if err != nil {
		t.Fatalf("Invocation failed: %v", err)
	}
	return result
}

func decodeError(t *testing.T, resp *lambda.PlatformResponse) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal([]byte(resp.BodyString()), &body); err != nil {
		t.Fatalf("Body is not an error response: %v", err)
	}
	return body
}

func TestRequestID(t *testing.T) {
	t.Run("Generated", func(t *testing.T) {
		original := map[string]string{"Accept": "*/*"}
		result := run(t, RequestID(), &lambda.PlatformRequest{Method: "GET", Path: "/", Headers: original})

		if !result.IsContinuation() {
			t.Fatalf("Expected continuation, got %+v", result)
		}
		id := result.Request.Headers[RequestIDHeader]
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("Expected generated UUID, got %q", id)
		}
		if result.Request.Headers["Accept"] != "*/*" {
			t.Errorf("Expected existing headers kept, got %v", result.Request.Headers)
		}
		if _, ok := original[RequestIDHeader]; ok {
			t.Error("Expected platform header map to be left untouched")
		}
	})

	t.Run("Provided", func(t *testing.T) {
		headers := map[string]string{RequestIDHeader: "req-123"}
		result := run(t, RequestID(), &lambda.PlatformRequest{Headers: headers})

		if got := result.Request.Headers[RequestIDHeader]; got != "req-123" {
			t.Errorf("Expected req-123, got %q", got)
		}
	})

	for _, key := range []string{"x-request-id", "X-Request-Id"} {
		t.Run("Provided as "+key, func(t *testing.T) {
			var annotated string
			handler := func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
				RequestID()(req, res, func() {
					annotated = req.GetString(RequestIDKey)
					next()
				})
			}
			result := run(t, handler, &lambda.PlatformRequest{Headers: map[string]string{key: "req-42"}})

			if annotated != "req-42" {
				t.Errorf("Expected annotation req-42, got %q", annotated)
			}
			if len(result.Request.Headers) != 1 || result.Request.Headers[key] != "req-42" {
				t.Errorf("Expected only %s: req-42, got %v", key, result.Request.Headers)
			}
		})
	}
}

func TestSetHeaderKeepsExistingKey(t *testing.T) {
	req := shim.ToFramework(&lambda.PlatformRequest{Headers: map[string]string{"x-user-id": "old"}})
	setHeader(req, UserIDHeader, "new")

	if len(req.Headers) != 1 || req.Headers["x-user-id"] != "new" {
		t.Errorf("Expected x-user-id overwritten in place, got %v", req.Headers)
	}
}

func TestRespondEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	logrus.SetLevel(logrus.DebugLevel)
	defer func() {
		logrus.SetOutput(io.Discard)
		logrus.SetLevel(logrus.InfoLevel)
	}()

	_, err := shim.Wrap(func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
		respond(res, 400, map[string]any{"bad": make(chan int)})
	})(context.Background(), &lambda.PlatformRequest{})

	if !errors.Is(err, shim.ErrEncodeBody) {
		t.Errorf("Expected ErrEncodeBody, got %v", err)
	}
	if !strings.Contains(buf.String(), "Failed to send response") {
		t.Errorf("Expected debug log of the failed send, got %q", buf.String())
	}
}

func TestAuthService(t *testing.T) {
	auth := NewAuthService(&AuthConfig{JWTSecret: "test-secret"})

	token, err := auth.GenerateToken("u-1", "baker", "baker@example.com", []string{"admin"})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "u-1" || claims.Username != "baker" {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewAuthService(&AuthConfig{JWTSecret: "other-secret"})
		if _, err := other.ValidateToken(token); err == nil {
			t.Error("Expected validation to fail with wrong secret")
		}
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		other := NewAuthService(&AuthConfig{JWTSecret: "test-secret", Issuer: "someone-else"})
		if _, err := other.ValidateToken(token); err == nil {
			t.Error("Expected validation to fail with wrong issuer")
		}
	})

	t.Run("Expired", func(t *testing.T) {
		short := NewAuthService(&AuthConfig{JWTSecret: "test-secret", TokenDuration: -time.Minute})
		expired, err := short.GenerateToken("u-1", "baker", "", nil)
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}
		if _, err := auth.ValidateToken(expired); err == nil {
			t.Error("Expected validation to fail for expired token")
		}
	})
}

func TestAuthentication(t *testing.T) {
	auth := NewAuthService(&AuthConfig{JWTSecret: "test-secret"})
	token, err := auth.GenerateToken("u-1", "baker", "", []string{"viewer"})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantUser   string
	}{
		{"missing header", map[string]string{}, 401, ""},
		{"wrong scheme", map[string]string{"Authorization": "Basic abc"}, 401, ""},
		{"bad token", map[string]string{"Authorization": "Bearer nope"}, 401, ""},
		{"valid token", map[string]string{"Authorization": "Bearer " + token}, 0, "u-1"},
		{"lowercase header", map[string]string{"authorization": "Bearer " + token}, 0, "u-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := run(t, Authentication(auth), &lambda.PlatformRequest{Method: "GET", Path: "/private", Headers: tt.headers})

			if tt.wantStatus != 0 {
				if !result.IsResponse() {
					t.Fatalf("Expected response, got %+v", result)
				}
				if result.Response.Status != tt.wantStatus {
					t.Errorf("Expected status %d, got %d", tt.wantStatus, result.Response.Status)
				}
				if result.Response.Type != lambda.TypeJSON {
					t.Errorf("Expected JSON type, got %s", result.Response.Type)
				}
				if body := decodeError(t, result.Response); body.Error != "Unauthorized" {
					t.Errorf("Expected Unauthorized error, got %+v", body)
				}
				return
			}

			if !result.IsContinuation() {
				t.Fatalf("Expected continuation, got %+v", result)
			}
			if got := result.Request.Headers[UserIDHeader]; got != tt.wantUser {
				t.Errorf("Expected user header %q, got %q", tt.wantUser, got)
			}
		})
	}
}

func TestAuthorization(t *testing.T) {
	auth := NewAuthService(&AuthConfig{JWTSecret: "test-secret"})
	viewer, _ := auth.GenerateToken("u-1", "viewer", "", []string{"viewer"})
	admin, _ := auth.GenerateToken("u-2", "admin", "", []string{"admin"})

	handler := Authorization(auth, RoleAdmin)

	t.Run("InsufficientRole", func(t *testing.T) {
		result := run(t, handler, &lambda.PlatformRequest{Headers: map[string]string{"Authorization": "Bearer " + viewer}})
		if !result.IsResponse() || result.Response.Status != 403 {
			t.Errorf("Expected 403 response, got %+v", result.Response)
		}
	})

	t.Run("RequiredRole", func(t *testing.T) {
		result := run(t, handler, &lambda.PlatformRequest{Headers: map[string]string{"Authorization": "Bearer " + admin}})
		if !result.IsContinuation() {
			t.Errorf("Expected continuation, got %+v", result)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		result := run(t, handler, &lambda.PlatformRequest{})
		if !result.IsResponse() || result.Response.Status != 401 {
			t.Errorf("Expected 401 response, got %+v", result.Response)
		}
	})
}

func TestRateLimiter(t *testing.T) {
	adapted := shim.Wrap(RateLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		result, err := adapted(context.Background(), &lambda.PlatformRequest{Path: "/"})
		if err != nil {
			t.Fatalf("Invocation failed: %v", err)
		}
		if !result.IsContinuation() {
			t.Fatalf("Expected request %d to pass, got %+v", i+1, result.Response)
		}
	}

	result, err := adapted(context.Background(), &lambda.PlatformRequest{Path: "/"})
	if err != nil {
		t.Fatalf("Invocation failed: %v", err)
	}
	if !result.IsResponse() || result.Response.Status != 429 {
		t.Fatalf("Expected 429 response, got %+v", result)
	}
	if body := decodeError(t, result.Response); body.Error != "Rate limit exceeded" {
		t.Errorf("Unexpected error body: %+v", body)
	}
}

func TestLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	t.Run("Response", func(t *testing.T) {
		buf.Reset()
		adapted := Logged(shim.Wrap(func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
			res.Status(503).Send("down")
		}), logger)

		result, err := adapted(context.Background(), &lambda.PlatformRequest{
			Method:  "GET",
			Path:    "/status",
			Headers: map[string]string{RequestIDHeader: "req-9"},
		})
		if err != nil || result.Response.Status != 503 {
			t.Fatalf("Unexpected result %+v, err %v", result, err)
		}

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Expected one JSON log line, got %q", buf.String())
		}
		if entry["outcome"] != "response" || entry["status_code"] != float64(503) {
			t.Errorf("Unexpected log entry: %v", entry)
		}
		if entry["request_id"] != "req-9" || entry["level"] != "error" {
			t.Errorf("Unexpected log entry: %v", entry)
		}
	})

	t.Run("Continuation", func(t *testing.T) {
		buf.Reset()
		adapted := Logged(shim.Wrap(func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
			next()
		}), logger)

		if _, err := adapted(context.Background(), &lambda.PlatformRequest{Path: "/"}); err != nil {
			t.Fatalf("Invocation failed: %v", err)
		}
		if !strings.Contains(buf.String(), `"outcome":"continue"`) {
			t.Errorf("Expected continue outcome, got %q", buf.String())
		}
	})

	t.Run("Lower case request ID", func(t *testing.T) {
		buf.Reset()
		adapted := Logged(shim.Wrap(func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
			res.Send("ok")
		}), logger)

		_, err := adapted(context.Background(), &lambda.PlatformRequest{
			Headers: map[string]string{"x-request-id": "req-10"},
		})
		if err != nil {
			t.Fatalf("Invocation failed: %v", err)
		}
		if !strings.Contains(buf.String(), `"request_id":"req-10"`) {
			t.Errorf("Expected request_id in log, got %q", buf.String())
		}
	})

	t.Run("Error", func(t *testing.T) {
		buf.Reset()
		adapted := Logged(shim.Wrap(func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
			panic("boom")
		}), logger)

		_, err := adapted(context.Background(), &lambda.PlatformRequest{Path: "/"})
		if !errors.Is(err, shim.ErrHandlerFault) {
			t.Fatalf("Expected handler fault, got %v", err)
		}
		if !strings.Contains(buf.String(), `"outcome":"error"`) {
			t.Errorf("Expected error outcome, got %q", buf.String())
		}
	})
}
