// internal/browser/allocator.go
package browser

import (
	"context"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/xkilldash9x/socialbot/internal/config"
)

// execFlags computes the Chrome command line flags for cfg on top of
// chromedp.DefaultExecAllocatorOptions.
func execFlags(cfg config.BrowserConfig) map[string]interface{} {
	flags := map[string]interface{}{
		// Hardened hosts and containers refuse the sandbox; /dev/shm is tiny in docker.
		"no-sandbox":            true,
		"disable-dev-shm-usage": true,
		"headless":              cfg.Headless,
	}
	if cfg.DisableGPU {
		flags["disable-gpu"] = true
	}
	if cfg.UserDataDir != "" {
		flags["user-data-dir"] = cfg.UserDataDir
	}

	// Extra flags from the config file's 'args' slice, either "--flag" or "--key=value".
	for _, arg := range cfg.Args {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
		if arg == "" {
			continue
		}
		if key, value, ok := strings.Cut(arg, "="); ok {
			flags[key] = value
			continue
		}
		flags[arg] = true
	}
	return flags
}

// ExecOptions builds the allocator options for cfg.
func ExecOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range execFlags(cfg) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

// NewAllocator creates the root allocator context that owns the browser process.
// Cancelling the returned function terminates the browser.
func NewAllocator(ctx context.Context, cfg config.BrowserConfig) (context.Context, context.CancelFunc) {
	return chromedp.NewExecAllocator(ctx, ExecOptions(cfg)...)
}
