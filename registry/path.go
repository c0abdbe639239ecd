package registry

import (
	"strconv"
	"strings"
)

// Resolved is the outcome of resolving a path or id against the registry.
// Listing is set when the path ended in a trailing "/" (the container
// itself, asking for its listing); RecordIndex is set when the final
// segment was an all-digits record index into an ARRAY. Both wire codecs
// call through this resolver, so record addressing behaves the same on
// each.
type Resolved struct {
	Object      *Object
	Listing     bool
	RecordIndex int
	HasRecord   bool
}

// ResolveID looks up an object by numeric id.
func (r *Registry) ResolveID(id uint16) (Resolved, error) {
	o, err := r.ByID(id)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Object: o}, nil
}

// ResolvePath splits path on "/" and descends the tree segment by segment,
// starting at root. An empty path resolves to root. If any segment fails
// to resolve, the whole call fails without returning any partial state.
//
// Record index segments (e.g. "meas/log/3") are supported as a trailing
// all-digits segment selecting an element of the preceding ARRAY object.
// A record's own named sub-fields are not addressable; only whole array
// elements are.
func (r *Registry) ResolvePath(path string) (Resolved, error) {
	listing := strings.HasSuffix(path, "/") && path != "/"
	trimmed := strings.TrimSuffix(path, "/")
	trimmed = strings.TrimPrefix(trimmed, "/")

	if trimmed == "" {
		return Resolved{Object: r.Root(), Listing: listing || path == "/" || path == ""}, nil
	}

	segments := strings.Split(trimmed, "/")
	parent := r.Root()
	var current *Object
	for i, seg := range segments {
		if n, isIndex := parseRecordIndex(seg); isIndex && i == len(segments)-1 {
			if current == nil {
				return Resolved{}, ErrNotFound
			}
			return Resolved{Object: current, RecordIndex: n, HasRecord: true}, nil
		}
		child, err := r.ByName(int32(parent.ID), seg)
		if err != nil {
			return Resolved{}, ErrNotFound
		}
		current = child
		parent = child
	}
	return Resolved{Object: current, Listing: listing}, nil
}

// parseRecordIndex reports whether seg is an all-digits segment, and if so
// its integer value.
func parseRecordIndex(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	for _, c := range seg {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return n, true
}
