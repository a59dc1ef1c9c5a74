package shim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"gateway-shim/pkg/lambda"
)

// Response is the sink a handler answers through. Send and JSON settle the
// invocation; Status and Type only change the pending response and can be chained.
type Response struct {
	mu     sync.Mutex
	acc    lambda.PlatformResponse
	done   *completion
	logger logrus.FieldLogger
}

func newResponse(done *completion, logger logrus.FieldLogger) *Response {
	return &Response{
		acc:    *lambda.NewPlatformResponse(),
		done:   done,
		logger: logger,
	}
}

// Status sets the response status code
func (r *Response) Status(code int) *Response {
	r.mu.Lock()
	r.acc.Status = code
	r.mu.Unlock()
	return r
}

// Type sets the response content type, e.g. lambda.TypeText
func (r *Response) Type(mime string) *Response {
	r.mu.Lock()
	r.acc.Type = mime
	r.mu.Unlock()
	return r
}

// Send answers with body as-is, keeping the current status and content type
func (r *Response) Send(body string) error {
	won := r.done.settle(outcome{trigger: triggerSend}, func() {
		r.mu.Lock()
		r.acc.Body = &body
		r.mu.Unlock()
	})
	if !won {
		return r.ignored(triggerSend)
	}
	return nil
}

// JSON answers with v encoded as two-space indented JSON and the JSON content type
func (r *Response) JSON(v any) error {
	body, err := encodeJSON(v)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrEncodeBody, err)
		if !r.done.settle(outcome{trigger: triggerJSON, err: err}, nil) {
			return r.ignored(triggerJSON)
		}
		return err
	}

	won := r.done.settle(outcome{trigger: triggerJSON}, func() {
		r.mu.Lock()
		r.acc.Type = lambda.TypeJSON
		r.acc.Body = &body
		r.mu.Unlock()
	})
	if !won {
		return r.ignored(triggerJSON)
	}
	return nil
}

func (r *Response) ignored(trigger string) error {
	r.logger.WithFields(logrus.Fields{
		"trigger":    trigger,
		"settled_by": r.done.settledBy(),
	}).Warn("Completion trigger ignored")
	return ErrAlreadySettled
}

// snapshot copies the accumulated response
func (r *Response) snapshot() *lambda.PlatformResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := r.acc
	if r.acc.Body != nil {
		body := *r.acc.Body
		resp.Body = &body
	}
	return &resp
}

// encodeJSON renders v the way JSON.stringify(v, null, 2) does: two-space indent,
// no HTML escaping, no trailing newline
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
