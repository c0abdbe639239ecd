// Package server implements the request dispatcher and handler suite: the
// state machine that turns a wire request into {resolve, authorize, execute,
// encode} against a *registry.Registry.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/thingset-io/thingset-core/registry"
	"github.com/thingset-io/thingset-core/wire/text"
)

// BufferPool is the host-supplied allocator for response buffers; the core
// only consumes it behind this interface. Acquire may block;
// Context.acquireBuffer turns a caller-provided timeout into an Internal
// Server Error rather than a panic.
type BufferPool interface {
	Acquire(ctx context.Context) ([]byte, error)
	Release(buf []byte)
}

// Context is the single owner of a registry's mutable state: the serializing
// mutex, the caller's role, and the watched-subsets/update-callback
// configuration a PATCH consults after it commits.
type Context struct {
	mu sync.Mutex

	Registry *registry.Registry

	// Role is the caller's role mask for this context. A host
	// serving multiple callers with different privileges runs one Context
	// per caller, or swaps Role between requests.
	Role registry.RoleMask

	// WatchedSubsets is the bitmask of subsets whose writes trigger
	// UpdateCallback once after a PATCH commits.
	WatchedSubsets uint16
	UpdateCallback func()

	// CompactResponses suppresses the human-readable status word in text
	// responses, for hosts that want the compact wire form.
	CompactResponses bool

	// TokenCapacity bounds the text codec's parser token array. Zero uses
	// text.DefaultTokenCapacity.
	TokenCapacity int

	// BufferTimeout bounds how long a handler waits on Pool.Acquire before
	// failing the request with Internal Server Error.
	BufferTimeout time.Duration
	Pool          BufferPool
}

// NewContext builds a Context over reg. role is the caller's initial access
// mask; it may be changed afterward (e.g. per-connection) by callers holding
// no outstanding request.
func NewContext(reg *registry.Registry, role registry.RoleMask) *Context {
	return &Context{Registry: reg, Role: role}
}

// lock serializes the whole request-processing path, including statement
// emission.
func (c *Context) lock()   { c.mu.Lock() }
func (c *Context) unlock() { c.mu.Unlock() }

func (c *Context) tokenCapacity() int {
	if c.TokenCapacity > 0 {
		return c.TokenCapacity
	}
	return text.DefaultTokenCapacity
}

// acquireBuffer asks the configured pool for a buffer, bounding the wait by
// BufferTimeout. With no pool configured, requests are unpooled and always
// succeed (the default for hosts that haven't wired one in yet).
func (c *Context) acquireBuffer() ([]byte, error) {
	if c.Pool == nil {
		return nil, nil
	}
	ctx := context.Background()
	var cancel context.CancelFunc
	if c.BufferTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.BufferTimeout)
		defer cancel()
	}
	buf, err := c.Pool.Acquire(ctx)
	if err != nil {
		return nil, registry.Wrap(registry.ErrKindInternal, err, "buffer pool acquire")
	}
	return buf, nil
}

func (c *Context) releaseBuffer(buf []byte) {
	if c.Pool != nil && buf != nil {
		c.Pool.Release(buf)
	}
}
