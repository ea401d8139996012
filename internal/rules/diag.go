// internal/rules/diag.go
package rules

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Collector is the append-only diagnostics sink validators write
// human-readable explanations to. Entirely optional; verdicts are
// unaffected by whether a collector is attached.
type Collector interface {
	Printf(format string, args ...any)
}

// NopCollector discards all diagnostics.
type NopCollector struct{}

func (NopCollector) Printf(string, ...any) {}

// BufferCollector accumulates diagnostics in memory, for tests and for
// returning trace text to a requester.
type BufferCollector struct {
	mu sync.Mutex
	b  strings.Builder
}

func (c *BufferCollector) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(&c.b, format, args...)
}

// String returns the collected trace text.
func (c *BufferCollector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.b.String()
}

// ZapCollector forwards diagnostics to a zap logger at debug level.
type ZapCollector struct {
	Log *zap.Logger
}

func (c ZapCollector) Printf(format string, args ...any) {
	if c.Log == nil {
		return
	}
	c.Log.Debug(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}
