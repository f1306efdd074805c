package middleware

import (
	"fmt"
	"net/http"

	"regroup-hq/regroup/pkg/api"
	"regroup-hq/regroup/pkg/api/types"
)

// BodyLimit rejects requests whose declared Content-Length exceeds limit
// with 413 and caps the body reader for the rest. A non-positive limit
// disables the middleware.
func BodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				err := &api.RequestError{
					Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", limit),
					Code:    types.CodeRequestTooLarge,
					Param:   "body",
					Status:  http.StatusRequestEntityTooLarge,
				}
				_ = api.WriteErrorResponse(w, err.ToErrorResponse())
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
