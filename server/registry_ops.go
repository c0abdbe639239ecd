package server

import (
	"strconv"
	"strings"

	"github.com/thingset-io/thingset-core/registry"
)

// readableChildren filters children down to those role may read, preserving
// declaration order: FETCH/GET value enumeration only returns entries the
// caller is authorized to see.
func readableChildren(children []*registry.Object, role registry.Role) []*registry.Object {
	out := make([]*registry.Object, 0, len(children))
	for _, c := range children {
		if c.Access.CanRead(role) {
			out = append(out, c)
		}
	}
	return out
}

// fullPath reconstructs o's "/"-separated path from the root, for the
// _paths discovery endpoint.
func fullPath(reg *registry.Registry, o *registry.Object) string {
	if o.ID == registry.IDRoot {
		return "/"
	}
	var parts []string
	cur := o
	for cur.ID != registry.IDRoot {
		parts = append([]string{cur.Name}, parts...)
		parent, err := reg.ByID(cur.ParentID)
		if err != nil {
			break
		}
		cur = parent
	}
	return strings.Join(parts, "/")
}

// resolveChildByID resolves id as a child of container, failing NotFound
// if the object doesn't exist or isn't actually a child of container: an
// id belonging to a different parent never silently resolves.
func resolveChildByID(reg *registry.Registry, container *registry.Object, id uint16) (*registry.Object, error) {
	o, err := reg.ByID(id)
	if err != nil {
		return nil, err
	}
	if o.ParentID != container.ID {
		return nil, registry.ErrNotFound
	}
	return o, nil
}

func resolveChildByName(reg *registry.Registry, container *registry.Object, name string) (*registry.Object, error) {
	return reg.ByName(int32(container.ID), name)
}

// resolveSubsetTarget resolves a subset-membership payload, which may be a
// bare object name or a full "/"-separated path.
func resolveSubsetTarget(reg *registry.Registry, s string) (*registry.Object, error) {
	if strings.ContainsRune(s, '/') {
		res, err := reg.ResolvePath(s)
		if err != nil {
			return nil, err
		}
		return res.Object, nil
	}
	return reg.ByName(-1, s)
}

// resolvePatchKey resolves a text PATCH map key, which JSON always carries
// as a string: tries it as a sibling name first, falling back to a numeric
// id if the key is all-digits, for parity with the binary wire's map keys.
func resolvePatchKey(reg *registry.Registry, container *registry.Object, key string) (*registry.Object, error) {
	if obj, err := resolveChildByName(reg, container, key); err == nil {
		return obj, nil
	}
	if id, err := strconv.ParseUint(key, 10, 16); err == nil {
		return resolveChildByID(reg, container, uint16(id))
	}
	return nil, registry.ErrNotFound
}
