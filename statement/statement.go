// Package statement builds unsolicited publication messages for SUBSET and
// GROUP objects: the same encode step GET/FETCH use, driven by
// subset/group membership instead of a request.
package statement

import (
	"strings"

	"github.com/thingset-io/thingset-core/registry"
	"github.com/thingset-io/thingset-core/wire/binary"
	"github.com/thingset-io/thingset-core/wire/text"
)

const (
	binaryTag byte = 0x1F
	textTag   byte = '#'
)

// members returns obj's statement children in declaration order: subset
// membership for a SUBSET, direct children for a GROUP. Any other type, or
// a non-top-level endpoint, has no statement form.
func members(reg *registry.Registry, obj *registry.Object) []*registry.Object {
	if obj.ParentID != registry.IDRoot {
		return nil
	}
	switch obj.Type {
	case registry.TypeSubset:
		return reg.SubsetMembers(obj)
	case registry.TypeGroup:
		return reg.Children(obj.ID)
	default:
		return nil
	}
}

// BuildBinary emits 0x1F, obj's id, and the CBOR array of its members'
// current values. A nested or unsupported endpoint yields a zero-length
// slice rather than an error.
func BuildBinary(reg *registry.Registry, obj *registry.Object, maxLen int) ([]byte, error) {
	kids := members(reg, obj)
	if kids == nil {
		return nil, nil
	}
	w := binary.NewWriter(maxLen)
	if err := w.WriteUint(uint64(obj.ID)); err != nil {
		return nil, err
	}
	if err := w.WriteArrayHeader(len(kids)); err != nil {
		return nil, err
	}
	for _, c := range kids {
		if err := binary.EncodeValue(w, c); err != nil {
			return nil, err
		}
	}
	return append([]byte{binaryTag}, w.Bytes()...), nil
}

// BuildText emits "#<path> {name:value,...}" for obj's members. A nested
// or unsupported endpoint yields an empty string.
func BuildText(reg *registry.Registry, obj *registry.Object) (string, error) {
	kids := members(reg, obj)
	if kids == nil {
		return "", nil
	}
	parts := make([]string, len(kids))
	for i, c := range kids {
		s, err := text.EncodeValue(c)
		if err != nil {
			return "", err
		}
		parts[i] = text.RenderString(c.Name) + ":" + s
	}
	var b strings.Builder
	b.WriteByte(textTag)
	b.WriteString(obj.Name)
	b.WriteByte(' ')
	b.WriteByte('{')
	b.WriteString(strings.Join(parts, ","))
	b.WriteByte('}')
	return b.String(), nil
}
