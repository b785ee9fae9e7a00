// Package correlation propagates the X-Correlation-ID header into the
// request context and back onto the response, minting a fresh id when the
// caller sent none. Applied early in the chain so every log line and event
// produced by a request carries the same id.
package correlation

import (
	"net/http"

	"github.com/google/uuid"

	"clientele/pkg/requestcontext"
)

// Header is the wire name of the correlation id.
const Header = "X-Correlation-ID"

// Middleware reads or generates the correlation id, stores it in the
// context and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(Header)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		w.Header().Set(Header, correlationID)
		ctx := requestcontext.WithCorrelationID(r.Context(), correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
