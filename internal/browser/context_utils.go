// internal/browser/context_utils.go
package browser

import (
	"context"
)

// CombineContext creates a new context derived from ctx1 (primary) that is
// canceled when either ctx1 or ctx2 (secondary) is canceled. It inherits values
// only from ctx1, which for chromedp carries the CDP target, while ctx2 carries
// the caller's deadline.
func CombineContext(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(ctx1)

	go func() {
		select {
		case <-ctx2.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
