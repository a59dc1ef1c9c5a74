package middleware

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"gateway-shim/pkg/shim"
)

// RateLimiter answers 429 once the token bucket is empty and passes the request on
// otherwise. The bucket lives as long as the returned handler, so on a function
// runtime it spans the invocations served by one warm instance.
func RateLimiter(requestsPerSecond float64, burstSize int) shim.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize)

	return func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
		if !limiter.Allow() {
			logrus.WithFields(logrus.Fields{
				"path":       req.Path,
				"user_agent": req.Header("User-Agent"),
				"request_id": req.GetString(RequestIDKey),
			}).Warn("Rate limit exceeded")

			respond(res, http.StatusTooManyRequests, newErrorResponse(req,
				"Rate limit exceeded",
				fmt.Sprintf("Too many requests. Limit: %.1f requests per second", requestsPerSecond),
			))
			return
		}
		next()
	}
}
