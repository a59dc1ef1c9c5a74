package handlers

import (
	"fmt"
	"sort"

	"gateway-shim/internal/middleware"
	"gateway-shim/pkg/shim"
)

// Dependencies are the collaborators handlers are built from
type Dependencies struct {
	AuthService       *middleware.AuthService
	Version           string
	RequestsPerSecond float64
	Burst             int
}

// Registry maps handler names to handlers
type Registry map[string]shim.HandlerFunc

// NewRegistry builds every known handler from deps
func NewRegistry(deps Dependencies) Registry {
	registry := Registry{
		"hello":        Hello(),
		"broken":       Broken("the pretend server broke"),
		"request-time": RequestTime(nil),
		"health":       Health(deps.Version),
		"echo":         Echo(),
		"request-id":   middleware.RequestID(),
	}

	if deps.AuthService != nil {
		registry["auth"] = middleware.Authentication(deps.AuthService)
		registry["admin"] = middleware.Authorization(deps.AuthService, middleware.RoleAdmin)
	}

	if deps.RequestsPerSecond > 0 && deps.Burst > 0 {
		registry["rate-limit"] = middleware.RateLimiter(deps.RequestsPerSecond, deps.Burst)
	}

	return registry
}

// Lookup returns the handler registered under name
func (r Registry) Lookup(name string) (shim.HandlerFunc, error) {
	handler, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("unknown handler %q, available: %v", name, r.Names())
	}
	return handler, nil
}

// Names lists the registered handler names in order
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
