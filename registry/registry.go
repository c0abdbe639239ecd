package registry

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Registry is the fixed array of Object records known at process start.
// Structural attributes never change after New returns; Subsets and Access
// are the only fields the handler suite mutates at runtime, and only
// through the methods below.
type Registry struct {
	objects []Object
	byID    map[uint16]int // id -> index into objects
}

// New builds a Registry from a flat declaration list, validating its
// structural invariants: unique ids, resolvable parents, unique sibling
// names. Construction fails fast on any violation rather than leaving a
// partially valid tree around.
func New(objects []Object) (*Registry, error) {
	r := &Registry{
		objects: objects,
		byID:    make(map[uint16]int, len(objects)),
	}
	for i, o := range objects {
		if o.ID == IDInvalid {
			return nil, fmt.Errorf("registry: object %q uses reserved invalid id 0xFFFF", o.Name)
		}
		if o.ID == IDDiscoverIDs || o.ID == IDDiscoverPaths {
			return nil, fmt.Errorf("registry: object %q uses reserved discovery id 0x%04X", o.Name, o.ID)
		}
		if _, dup := r.byID[o.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate object id 0x%04X", o.ID)
		}
		// Normalize to NFC so two hosts declaring the same name with
		// different Unicode decompositions still resolve as one sibling.
		r.objects[i].Name = norm.NFC.String(o.Name)
		r.byID[o.ID] = i
	}
	if _, hasRoot := r.byID[IDRoot]; !hasRoot {
		r.objects = append(r.objects, NewGroup(IDRoot, IDRoot, "", NewAccess(RoleUser|RoleExpert|RoleMaker, 0), 0, nil))
		r.byID[IDRoot] = len(r.objects) - 1
	}
	for _, o := range r.objects {
		if o.ID == IDRoot {
			continue
		}
		if _, ok := r.byID[o.ParentID]; !ok {
			return nil, fmt.Errorf("registry: object %q references unknown parent 0x%04X", o.Name, o.ParentID)
		}
	}
	seen := map[uint16]map[string]bool{}
	for _, o := range r.objects {
		if o.ID == IDRoot {
			continue
		}
		if seen[o.ParentID] == nil {
			seen[o.ParentID] = map[string]bool{}
		}
		if seen[o.ParentID][o.Name] {
			return nil, fmt.Errorf("registry: duplicate sibling name %q under parent 0x%04X", o.Name, o.ParentID)
		}
		seen[o.ParentID][o.Name] = true
	}
	return r, nil
}

// ByID returns the object with the given id, or ErrNotFound.
func (r *Registry) ByID(id uint16) (*Object, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r.objects[i], nil
}

// ByName resolves a sibling name within parent. If parent < 0 any parent
// matches, used for the subset-member-by-name lookup, which takes a bare
// name with no declared container.
func (r *Registry) ByName(parent int32, name string) (*Object, error) {
	for i := range r.objects {
		o := &r.objects[i]
		if o.ID == IDRoot {
			continue
		}
		if parent >= 0 && uint16(parent) != o.ParentID {
			continue
		}
		if o.Name == name {
			return o, nil
		}
	}
	return nil, ErrNotFound
}

// Children returns the direct children of parent in registry declaration
// order, the order statements and GET listings enumerate in.
func (r *Registry) Children(parent uint16) []*Object {
	var out []*Object
	for i := range r.objects {
		o := &r.objects[i]
		if o.ID != IDRoot && o.ParentID == parent {
			out = append(out, o)
		}
	}
	return out
}

// All returns every object in declaration order (used by _ids/_paths
// discovery and by export).
func (r *Registry) All() []*Object {
	out := make([]*Object, 0, len(r.objects))
	for i := range r.objects {
		if r.objects[i].ID != IDRoot {
			out = append(out, &r.objects[i])
		}
	}
	return out
}

// SubsetMembers returns the objects whose Subsets mask intersects the bit
// represented by the SUBSET object sub.
func (r *Registry) SubsetMembers(sub *Object) []*Object {
	mask := uint16(sub.Detail)
	var out []*Object
	for i := range r.objects {
		o := &r.objects[i]
		if o.ID != IDRoot && o.Subsets&mask != 0 {
			out = append(out, o)
		}
	}
	return out
}

// SetSubsetBit sets or clears bit in o.Subsets.
func (r *Registry) SetSubsetBit(o *Object, bit uint16, set bool) {
	if set {
		o.Subsets |= bit
	} else {
		o.Subsets &^= bit
	}
}

// Root returns the synthetic root object (id 0).
func (r *Registry) Root() *Object {
	o, _ := r.ByID(IDRoot)
	return o
}
