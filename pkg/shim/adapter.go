// Package shim runs Express-style (req, res, next) handlers against the request and
// response shapes of a serverless function runtime.
//
// A wrapped handler is invoked once per platform request. It finishes by answering
// through the response sink (Send or JSON) or by calling next, which hands the
// possibly modified request back to the platform. The first of those wins.
package shim

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"gateway-shim/pkg/lambda"
)

// NextFunc passes the request on instead of answering it
type NextFunc func()

// HandlerFunc is an Express-style handler. It must call exactly one of res.Send,
// res.JSON or next, either before returning or later from another goroutine.
type HandlerFunc func(req *Request, res *Response, next NextFunc)

// AdaptedFunc takes a platform request and blocks until the wrapped handler settles.
// It returns early with the context's error if ctx is done first; the handler itself
// is not interrupted.
type AdaptedFunc func(ctx context.Context, req *lambda.PlatformRequest) (*lambda.Result, error)

type options struct {
	logger logrus.FieldLogger
}

// Option configures Wrap
type Option func(*options)

// WithLogger sets the logger used for diagnostics about misbehaving handlers
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Wrap adapts handler to the platform request/response shapes
func Wrap(handler HandlerFunc, opts ...Option) AdaptedFunc {
	o := &options{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(o)
	}

	return func(ctx context.Context, platformReq *lambda.PlatformRequest) (*lambda.Result, error) {
		inv := newInvocation(ctx, platformReq, o.logger)
		inv.run(handler)
		return inv.wait(ctx)
	}
}

// invocation holds the per-call state: one request, one response, one completion
type invocation struct {
	request  *Request
	response *Response
	done     *completion
	logger   logrus.FieldLogger
}

func newInvocation(ctx context.Context, platformReq *lambda.PlatformRequest, logger logrus.FieldLogger) *invocation {
	done := newCompletion()
	req := ToFramework(platformReq)
	req.ctx = ctx

	return &invocation{
		request:  req,
		response: newResponse(done, logger),
		done:     done,
		logger:   logger,
	}
}

// run calls the handler on the current goroutine. A panic settles the invocation as
// failed unless a trigger already won.
func (inv *invocation) run(handler HandlerFunc) {
	defer func() {
		if v := recover(); v != nil {
			fault := &HandlerFault{Value: v, Stack: debug.Stack()}
			if !inv.done.settle(outcome{trigger: triggerFault, err: fault}, nil) {
				inv.logger.WithFields(logrus.Fields{
					"error":      fault.Error(),
					"settled_by": inv.done.settledBy(),
				}).Warn("Handler fault after settlement dropped")
			}
		}
	}()

	handler(inv.request, inv.response, inv.next)
}

func (inv *invocation) next() {
	// Translate now so later changes by the handler are not picked up.
	platformReq := ToPlatform(inv.request)
	if !inv.done.settle(outcome{trigger: triggerNext, request: platformReq}, nil) {
		inv.logger.WithFields(logrus.Fields{
			"trigger":    triggerNext,
			"settled_by": inv.done.settledBy(),
		}).Warn("Completion trigger ignored")
	}
}

func (inv *invocation) wait(ctx context.Context) (*lambda.Result, error) {
	select {
	case <-inv.done.Done():
	default:
		select {
		case <-inv.done.Done():
		case <-ctx.Done():
			return nil, fmt.Errorf("invocation abandoned before handler completed: %w", ctx.Err())
		}
	}

	o := inv.done.result
	switch {
	case o.err != nil:
		return nil, o.err
	case o.request != nil:
		return &lambda.Result{Request: o.request}, nil
	default:
		return &lambda.Result{Response: inv.response.snapshot()}, nil
	}
}
