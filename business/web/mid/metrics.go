package mid

import (
	"context"
	"net/http"

	"github.com/jazcoin/node/foundation/blockchain/metrics"
	"github.com/jazcoin/node/foundation/web"
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			// Increment the request and error counters.
			metrics.AddRequest()
			if err != nil {
				metrics.AddError()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
