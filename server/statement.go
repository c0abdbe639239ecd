package server

import (
	"github.com/thingset-io/thingset-core/registry"
	"github.com/thingset-io/thingset-core/statement"
)

// EmitStatementBinary builds a binary statement for obj while holding the
// context's serializing mutex, so emission never interleaves with a request.
func EmitStatementBinary(ctx *Context, obj *registry.Object, maxLen int) ([]byte, error) {
	ctx.lock()
	defer ctx.unlock()
	return statement.BuildBinary(ctx.Registry, obj, maxLen)
}

// EmitStatementText is the text-wire counterpart of EmitStatementBinary.
func EmitStatementText(ctx *Context, obj *registry.Object) (string, error) {
	ctx.lock()
	defer ctx.unlock()
	return statement.BuildText(ctx.Registry, obj)
}
