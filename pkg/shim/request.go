package shim

import (
	"context"
	"sync"

	"gateway-shim/pkg/lambda"
)

// Request is the framework-side view of a platform request. Handlers may change any
// field and attach annotations with Set; only the six canonical fields are read back
// when the handler passes the request on.
type Request struct {
	Method  string
	Path    string
	Params  map[string]string
	Query   map[string]string
	Headers map[string]string
	Body    any

	ctx    context.Context
	mu     sync.RWMutex
	locals map[string]any
}

// ToFramework maps a platform request to a framework request. Keys are renamed only;
// absent values stay absent.
func ToFramework(req *lambda.PlatformRequest) *Request {
	if req == nil {
		return &Request{}
	}
	return &Request{
		Method:  req.Method,
		Path:    req.Path,
		Params:  req.PathParameters,
		Query:   req.QueryStringParameters,
		Headers: req.Headers,
		Body:    req.Body,
	}
}

// ToPlatform maps a framework request back to platform shape. Annotations are dropped.
func ToPlatform(req *Request) *lambda.PlatformRequest {
	if req == nil {
		return &lambda.PlatformRequest{}
	}
	return &lambda.PlatformRequest{
		Method:                req.Method,
		Path:                  req.Path,
		PathParameters:        req.Params,
		QueryStringParameters: req.Query,
		Headers:               req.Headers,
		Body:                  req.Body,
	}
}

// Context returns the invocation context, never nil
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Header returns a header value matched without regard to case, or "" when absent
func (r *Request) Header(name string) string {
	_, value, _ := lambda.LookupHeader(r.Headers, name)
	return value
}

// Set attaches an annotation to the request
func (r *Request) Set(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locals == nil {
		r.locals = make(map[string]any)
	}
	r.locals[key] = value
}

// Get returns an annotation previously attached with Set
func (r *Request) Get(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.locals[key]
	return value, ok
}

// GetString returns a string annotation, or "" when absent or not a string
func (r *Request) GetString(key string) string {
	if value, ok := r.Get(key); ok {
		if s, ok := value.(string); ok {
			return s
		}
	}
	return ""
}
