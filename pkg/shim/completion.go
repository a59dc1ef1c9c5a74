package shim

import (
	"sync"

	"gateway-shim/pkg/lambda"
)

// Trigger names, used in outcomes and log fields
const (
	triggerSend  = "send"
	triggerJSON  = "json"
	triggerNext  = "next"
	triggerFault = "fault"
)

// outcome is what the first trigger settled the invocation with. request is set on
// the continuation path, err on failure; neither means the response path.
type outcome struct {
	trigger string
	request *lambda.PlatformRequest
	err     error
}

// completion is a one-shot result: the first settle wins, later ones report false
type completion struct {
	once   sync.Once
	done   chan struct{}
	result outcome
}

func newCompletion() *completion {
	return &completion{done: make(chan struct{})}
}

// settle records o if nothing was recorded yet. apply runs before waiters are
// released and only for the winning call.
func (c *completion) settle(o outcome, apply func()) bool {
	won := false
	c.once.Do(func() {
		if apply != nil {
			apply()
		}
		c.result = o
		won = true
		close(c.done)
	})
	return won
}

// Done is closed once the invocation has settled
func (c *completion) Done() <-chan struct{} {
	return c.done
}

// settledBy names the winning trigger. Only valid after Done is closed.
func (c *completion) settledBy() string {
	return c.result.trigger
}
