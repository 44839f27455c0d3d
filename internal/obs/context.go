package obs

import "context"

type routePatternKey struct{}

// WithRoutePattern stamps the matched chi pattern onto the context so logs
// and metrics label by pattern ("/api/v1/carts/{cartID}/items") instead of
// the concrete path.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext reads the stamped pattern, empty when absent.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(routePatternKey{}).(string); ok {
		return v
	}
	return ""
}
