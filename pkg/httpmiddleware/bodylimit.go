package httpmiddleware

import "net/http"

// BodyLimit returns a middleware that caps the request body at max bytes
// using http.MaxBytesReader. Reads past the limit fail and close the
// connection, so oversized uploads are rejected at the transport boundary
// before any handler logic runs on them.
func BodyLimit(max int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, max)
			}
			next.ServeHTTP(w, r)
		})
	}
}
