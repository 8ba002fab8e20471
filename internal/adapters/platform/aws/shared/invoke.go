package shared

import (
	"context"
)

// Invoke runs fn through caller and returns its output.
func Invoke[T any](ctx context.Context, caller Caller, service, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := caller.Call(ctx, service, operation, func(ctx context.Context) error {
		var callErr error
		out, callErr = fn(ctx)
		return callErr
	})
	return out, err
}
