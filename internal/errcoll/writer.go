package errcoll

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// WriterErrorCollector is an [Interface] implementation that writes errors to
// an [io.Writer].
type WriterErrorCollector struct {
	mu *sync.Mutex
	w  io.Writer
}

// NewWriterErrorCollector returns a new properly initialized
// *WriterErrorCollector.  w must not be nil.
func NewWriterErrorCollector(w io.Writer) (c *WriterErrorCollector) {
	return &WriterErrorCollector{
		mu: &sync.Mutex{},
		w:  w,
	}
}

// type check
var _ Interface = (*WriterErrorCollector)(nil)

// Collect implements the [Interface] interface for *WriterErrorCollector.
func (c *WriterErrorCollector) Collect(_ context.Context, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(
		c.w,
		"%s: %s: caught error: %s\n",
		time.Now().Format(time.RFC3339),
		caller(2),
		err,
	)
}

// caller returns the file and line of the caller skip frames up.
func caller(skip int) (loc string) {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}

	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
