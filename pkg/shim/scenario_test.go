package shim

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

// End-to-end: platform request in, platform JSON out.
func TestScenarios(t *testing.T) {
	tests := []struct {
		name     string
		handler  HandlerFunc
		expected string
	}{
		{
			name: "send",
			handler: func(req *Request, res *Response, next NextFunc) {
				res.Send("Hello World!")
			},
			expected: `{"body":"Hello World!","status":200,"type":"text/html; charset=UTF-8"}`,
		},
		{
			name: "status then json",
			handler: func(req *Request, res *Response, next NextFunc) {
				res.Status(500).JSON(map[string]string{"error": "broke"})
			},
			expected: `{"body":"{\n  \"error\": \"broke\"\n}","status":500,"type":"application/json; charset=UTF-8"}`,
		},
		{
			name: "annotate then next",
			handler: func(req *Request, res *Response, next NextFunc) {
				req.Set("requestTime", time.Now())
				next()
			},
			expected: `{"httpMethod":"GET","path":"/","pathParameters":null,"queryStringParameters":{},"headers":{},"body":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Wrap(tt.handler, WithLogger(quietLogger()))(context.Background(), fakePlatformRequest())
			if err != nil {
				t.Fatalf("Invocation failed: %v", err)
			}

			data, err := json.Marshal(result)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, data)
			}
		})
	}
}
