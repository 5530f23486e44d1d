package request

import (
	"net/http"
)

// BodyLimit caps request bodies at maxBytes. Estimation requests may carry an
// inline photo, so the router sets a generous limit for that route only.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
