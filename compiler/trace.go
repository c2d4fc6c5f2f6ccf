package compiler

import "time"

// TraceFunc is called once per pass invocation with how long it took,
// without committing the core to any particular logging library: the
// caller decides whether to print it, histogram it, or drop it.
type TraceFunc func(pass string, module string, elapsed time.Duration)

// ContextOption configures a Context at construction time.
type ContextOption func(*Context)

// WithTrace installs fn as the Context's pass-timing hook.
func WithTrace(fn TraceFunc) ContextOption {
	return func(c *Context) { c.trace = fn }
}

func (c *Context) traced(pass, module string, fn func()) {
	if c.trace == nil {
		fn()
		return
	}
	start := time.Now()
	fn()
	c.trace(pass, module, time.Since(start))
}
