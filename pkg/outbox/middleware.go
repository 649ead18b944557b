package outbox

// Middleware wraps a delivery step with cross-cutting behavior. A middleware
// may observe, modify, short-circuit or augment the delivery before and
// after the next layer runs.
type Middleware func(next Handler) Handler

// Chain folds the middlewares around base right-to-left, so the first
// middleware in the slice is the outermost wrapper seen by each message.
func Chain(base Handler, middlewares ...Middleware) Handler {
	h := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
