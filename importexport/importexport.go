// Package importexport implements bulk persistence of the subset-tagged
// portion of a registry: a CBOR map of {id -> value} written by Export and
// restored by Import. Used to save/load configuration across a
// process restart.
package importexport

import (
	"github.com/thingset-io/thingset-core/registry"
	"github.com/thingset-io/thingset-core/wire/binary"
)

// Export writes a CBOR map of every object whose Subsets mask intersects
// bit, keyed by id, to a buffer capped at maxLen bytes.
func Export(reg *registry.Registry, bit uint16, maxLen int) ([]byte, error) {
	var members []*registry.Object
	for _, o := range reg.All() {
		if o.Subsets&bit != 0 {
			members = append(members, o)
		}
	}
	w := binary.NewWriter(maxLen)
	if err := w.WriteMapHeader(len(members)); err != nil {
		return nil, err
	}
	for _, o := range members {
		if err := w.WriteUint(uint64(o.ID)); err != nil {
			return nil, err
		}
		if err := binary.EncodeValue(w, o); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// entry is a staged import write, decoded but not yet committed: the same
// validate-then-commit split the PATCH handlers use, so a type mismatch
// anywhere fails the whole import with nothing written.
type entry struct {
	obj      *registry.Object
	item     binary.Item
	isArray  bool
	arrayVal []interface{}
}

// skipItems discards n top-level scalar items without interpreting them,
// for the value half of an import entry whose id isn't in the registry:
// the reader still has to advance past the value to reach the next map
// entry even though nothing is written for it.
func skipItems(r *binary.Reader, n int) error {
	for i := 0; i < n; i++ {
		if _, err := r.ReadItem(); err != nil {
			return err
		}
	}
	return nil
}

func (e entry) commit() error {
	if e.isArray {
		arr, err := e.obj.Array()
		if err != nil {
			return err
		}
		return arr.Set(e.arrayVal)
	}
	return binary.DecodeInto(e.obj, e.item)
}

// Import decodes buf as a CBOR map and restores every entry whose id is
// known to reg, bypassing the normal role check, since this is local
// restoration, not a remote write. Unknown ids are silently skipped. A
// type mismatch on a known id aborts the whole import without committing
// any of its writes.
func Import(reg *registry.Registry, buf []byte) error {
	r := binary.NewReader(buf)
	hdr, err := r.ReadItem()
	if err != nil {
		return err
	}
	if hdr.Kind != binary.KindMap {
		return registry.Newf(registry.ErrKindBadRequest, "import payload is not a map")
	}

	entries := make([]entry, 0, hdr.MapLen)
	for i := 0; i < hdr.MapLen; i++ {
		keyItem, err := r.ReadItem()
		if err != nil {
			return err
		}
		id, err := keyItem.AsInt()
		if err != nil {
			return registry.Wrap(registry.ErrKindBadRequest, err, "import key is not an id")
		}
		valItem, err := r.ReadItem()
		if err != nil {
			return err
		}

		obj, err := reg.ByID(uint16(id))
		if err != nil {
			if valItem.Kind == binary.KindArray {
				if err := skipItems(r, valItem.ArrayLen); err != nil {
					return err
				}
			}
			continue
		}

		if valItem.Kind == binary.KindArray {
			if obj.Type != registry.TypeArray {
				return registry.Newf(registry.ErrKindUnsupportedFormat, "import entry 0x%04X is not an array", obj.ID)
			}
			arr, err := obj.Array()
			if err != nil {
				return err
			}
			vals, err := binary.DecodeArrayElements(r, arr.Elem, valItem.ArrayLen)
			if err != nil {
				return err
			}
			if !arr.WouldFit(vals) {
				return registry.Newf(registry.ErrKindBadRequest, "import entry 0x%04X exceeds array capacity", obj.ID)
			}
			entries = append(entries, entry{obj: obj, isArray: true, arrayVal: vals})
			continue
		}
		if err := binary.CheckAssignable(obj, valItem); err != nil {
			return err
		}
		entries = append(entries, entry{obj: obj, item: valItem})
	}

	for _, e := range entries {
		if err := e.commit(); err != nil {
			return err
		}
	}
	return nil
}
