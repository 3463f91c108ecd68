// Package names generates identifiers for workers, tasks and test fixtures.
package names

import (
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

const defaultSeparator = "-"

// Generator hands out prefix-1, prefix-2 and so on. It is safe for concurrent
// use; each Generator keeps its own counter.
type Generator struct {
	prefix string
	sep    string
	start  int64
	next   *atomic.Int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeparator replaces the "-" between prefix and number.
func WithSeparator(sep string) Option {
	return func(g *Generator) {
		g.sep = sep
	}
}

// WithStart sets the first number handed out. The default is 1.
func WithStart(n int64) Option {
	return func(g *Generator) {
		g.start = n
	}
}

// NewGenerator creates a Generator for prefix.
func NewGenerator(prefix string, opts ...Option) *Generator {
	g := &Generator{
		prefix: prefix,
		sep:    defaultSeparator,
		start:  1,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.next = atomic.NewInt64(g.start)

	return g
}

// Next returns the next name.
func (g *Generator) Next() string {
	n := g.next.Inc() - 1

	return g.prefix + g.sep + strconv.FormatInt(n, 10)
}

// Reset starts numbering over.
func (g *Generator) Reset() {
	g.next.Store(g.start)
}

// Unique returns prefix-<uuid>, or just the uuid for an empty prefix.
func Unique(prefix string) string {
	id := uuid.NewString()

	if prefix == "" {
		return id
	}

	return prefix + defaultSeparator + id
}
