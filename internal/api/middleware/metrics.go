package middleware

import (
	"net/http"
	"sync/atomic"
)

// Metrics returns middleware that counts requests and error responses
// (4xx/5xx) into the given counters.
func Metrics(requests, errs *atomic.Int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			if rw.statusCode >= 400 {
				errs.Add(1)
			}
		})
	}
}
