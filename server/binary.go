package server

import (
	"github.com/thingset-io/thingset-core/registry"
	"github.com/thingset-io/thingset-core/wire/binary"
)

// Binary method bytes.
const (
	wireGet    byte = 0x01
	wirePost   byte = 0x02
	wireDelete byte = 0x04
	wireFetch  byte = 0x05
	wirePatch  byte = 0x07
)

// discoverKind distinguishes the two virtual endpoints from a real lookup.
type discoverKind int

const (
	discoverNone discoverKind = iota
	discoverIDs
	discoverPaths
)

// endpointRef is the parsed, not-yet-resolved request target.
type endpointRef struct {
	discover discoverKind
	byID     bool
	id       uint16
	path     string
}

func parseBinaryEndpoint(r *binary.Reader) (endpointRef, error) {
	item, err := r.ReadItem()
	if err != nil {
		return endpointRef{}, registry.Wrap(registry.ErrKindBadRequest, err, "reading endpoint")
	}
	switch item.Kind {
	case binary.KindUint:
		switch uint16(item.Uint) {
		case registry.IDDiscoverIDs:
			return endpointRef{discover: discoverIDs}, nil
		case registry.IDDiscoverPaths:
			return endpointRef{discover: discoverPaths}, nil
		default:
			return endpointRef{byID: true, id: uint16(item.Uint)}, nil
		}
	case binary.KindText:
		return endpointRef{path: item.Text}, nil
	default:
		return endpointRef{}, registry.ErrBadRequest
	}
}

func resolveEndpoint(ctx *Context, ep endpointRef) (registry.Resolved, error) {
	if ep.byID {
		return ctx.Registry.ResolveID(ep.id)
	}
	return ctx.Registry.ResolvePath(ep.path)
}

// DispatchBinary runs one binary-encoded request to completion and returns
// the complete response message (status byte, optionally followed by a CBOR
// payload). It holds the context's serializing mutex for the whole call.
func DispatchBinary(ctx *Context, req []byte) []byte {
	ctx.lock()
	defer ctx.unlock()

	if len(req) == 0 {
		return []byte{byte(StatusBadRequest)}
	}
	respBuf, err := ctx.acquireBuffer()
	if err != nil {
		return []byte{byte(StatusInternal)}
	}
	defer ctx.releaseBuffer(respBuf)

	method := req[0]
	r := binary.NewReader(req[1:])
	ep, err := parseBinaryEndpoint(r)
	if err != nil {
		return []byte{byte(statusFor(err))}
	}

	var resp []byte
	switch method {
	case wireGet:
		resp = binaryGet(ctx, ep)
	case wireFetch:
		resp = binaryFetch(ctx, ep, r)
	case wirePatch:
		resp = binaryPatch(ctx, ep, r)
	case wirePost:
		resp = binaryPost(ctx, ep, r)
	case wireDelete:
		resp = binaryDelete(ctx, ep, r)
	default:
		resp = []byte{byte(StatusMethodNotAllowed)}
	}
	return clampResponse(respBuf, resp)
}

// clampResponse enforces the pooled response buffer's capacity: a response
// that would not fit is discarded and only the status byte survives.
// With no pool configured there is no cap.
func clampResponse(pool, resp []byte) []byte {
	if pool == nil || len(resp) <= cap(pool) {
		return resp
	}
	return []byte{byte(StatusResponseTooLarge)}
}

func binaryStatus(s Status) []byte { return []byte{byte(s)} }

func binaryResponse(s Status, w *binary.Writer) []byte {
	return append([]byte{byte(s)}, w.Bytes()...)
}

func binaryDiscover(ctx *Context, kind discoverKind) []byte {
	all := ctx.Registry.All()
	w := binary.NewWriter(0)
	if err := w.WriteArrayHeader(len(all)); err != nil {
		return binaryStatus(statusFor(err))
	}
	for _, o := range all {
		var err error
		if kind == discoverIDs {
			err = w.WriteUint(uint64(o.ID))
		} else {
			err = w.WriteTextString(fullPath(ctx.Registry, o))
		}
		if err != nil {
			return binaryStatus(statusFor(err))
		}
	}
	return binaryResponse(StatusContent, w)
}

func binaryGet(ctx *Context, ep endpointRef) []byte {
	if ep.discover != discoverNone {
		return binaryDiscover(ctx, ep.discover)
	}
	res, err := resolveEndpoint(ctx, ep)
	if err != nil {
		return binaryStatus(statusFor(err))
	}
	obj := res.Object

	if res.HasRecord {
		if !obj.Access.CanRead(ctx.Role.Read()) {
			return binaryStatus(StatusUnauthorized)
		}
		w := binary.NewWriter(0)
		if err := binary.EncodeArrayElement(w, obj, res.RecordIndex); err != nil {
			return binaryStatus(statusFor(err))
		}
		return binaryResponse(StatusContent, w)
	}

	if !obj.Type.IsContainer() {
		if !obj.Access.CanRead(ctx.Role.Read()) {
			return binaryStatus(StatusUnauthorized)
		}
		w := binary.NewWriter(0)
		if err := binary.EncodeValue(w, obj); err != nil {
			return binaryStatus(statusFor(err))
		}
		return binaryResponse(StatusContent, w)
	}

	if obj.Type == registry.TypeExec && !res.Listing {
		return binaryStatus(StatusBadRequest)
	}

	children := ctx.Registry.Children(obj.ID)
	w := binary.NewWriter(0)
	if res.Listing {
		if err := w.WriteArrayHeader(len(children)); err != nil {
			return binaryStatus(statusFor(err))
		}
		for _, c := range children {
			var werr error
			if ep.byID {
				werr = w.WriteUint(uint64(c.ID))
			} else {
				werr = w.WriteTextString(c.Name)
			}
			if werr != nil {
				return binaryStatus(statusFor(werr))
			}
		}
		return binaryResponse(StatusContent, w)
	}

	readable := readableChildren(children, ctx.Role.Read())
	if err := w.WriteArrayHeader(len(readable)); err != nil {
		return binaryStatus(statusFor(err))
	}
	for _, c := range readable {
		var werr error
		if c.Type.IsContainer() || c.Type == registry.TypeSubset {
			werr = w.WriteNull()
		} else {
			werr = binary.EncodeValue(w, c)
		}
		if werr != nil {
			return binaryStatus(statusFor(werr))
		}
	}
	return binaryResponse(StatusContent, w)
}

func binaryFetch(ctx *Context, ep endpointRef, r *binary.Reader) []byte {
	res, err := resolveEndpoint(ctx, ep)
	if err != nil {
		return binaryStatus(statusFor(err))
	}
	container := res.Object
	if !container.Type.IsContainer() {
		return binaryStatus(StatusBadRequest)
	}

	var targets []*registry.Object
	single := false

	if r.Remaining() == 0 {
		targets = readableChildren(ctx.Registry.Children(container.ID), ctx.Role.Read())
	} else {
		item, err := r.ReadItem()
		if err != nil {
			return binaryStatus(statusFor(err))
		}
		switch item.Kind {
		case binary.KindUndefined, binary.KindNull:
			targets = readableChildren(ctx.Registry.Children(container.ID), ctx.Role.Read())
		case binary.KindUint, binary.KindText:
			single = true
			t, err := resolveFetchChild(ctx.Registry, container, item)
			if err != nil {
				return binaryStatus(statusFor(err))
			}
			targets = []*registry.Object{t}
		case binary.KindArray:
			targets = make([]*registry.Object, 0, item.ArrayLen)
			for i := 0; i < item.ArrayLen; i++ {
				elem, err := r.ReadItem()
				if err != nil {
					return binaryStatus(statusFor(err))
				}
				t, err := resolveFetchChild(ctx.Registry, container, elem)
				if err != nil {
					return binaryStatus(statusFor(err))
				}
				targets = append(targets, t)
			}
		default:
			return binaryStatus(StatusBadRequest)
		}
	}

	for _, t := range targets {
		if !t.Access.CanRead(ctx.Role.Read()) {
			return binaryStatus(StatusUnauthorized)
		}
	}

	w := binary.NewWriter(0)
	if single {
		if err := binary.EncodeValue(w, targets[0]); err != nil {
			return binaryStatus(statusFor(err))
		}
		return binaryResponse(StatusContent, w)
	}
	if err := w.WriteArrayHeader(len(targets)); err != nil {
		return binaryStatus(statusFor(err))
	}
	for _, t := range targets {
		if err := binary.EncodeValue(w, t); err != nil {
			return binaryStatus(statusFor(err))
		}
	}
	return binaryResponse(StatusContent, w)
}

func resolveFetchChild(reg *registry.Registry, container *registry.Object, item binary.Item) (*registry.Object, error) {
	switch item.Kind {
	case binary.KindUint:
		return resolveChildByID(reg, container, uint16(item.Uint))
	case binary.KindText:
		return resolveChildByName(reg, container, item.Text)
	default:
		return nil, registry.ErrBadRequest
	}
}

// patchEntry is a validated, not-yet-committed write staged during a PATCH's
// first pass: the whole map is type-checked before any write lands, so a
// bad entry anywhere rejects the request with nothing committed.
type patchEntry struct {
	obj      *registry.Object
	item     binary.Item
	isArray  bool
	arrayVal []interface{}
}

func (e patchEntry) commit() error {
	if e.isArray {
		arr, err := e.obj.Array()
		if err != nil {
			return err
		}
		return arr.Set(e.arrayVal)
	}
	return binary.DecodeInto(e.obj, e.item)
}

func binaryPatch(ctx *Context, ep endpointRef, r *binary.Reader) []byte {
	res, err := resolveEndpoint(ctx, ep)
	if err != nil {
		return binaryStatus(statusFor(err))
	}
	container := res.Object
	if !container.Type.IsContainer() {
		return binaryStatus(StatusBadRequest)
	}

	hdr, err := r.ReadItem()
	if err != nil {
		return binaryStatus(statusFor(err))
	}
	if hdr.Kind != binary.KindMap {
		return binaryStatus(StatusBadRequest)
	}

	entries := make([]patchEntry, 0, hdr.MapLen)
	for i := 0; i < hdr.MapLen; i++ {
		keyItem, err := r.ReadItem()
		if err != nil {
			return binaryStatus(statusFor(err))
		}
		obj, err := resolveFetchChild(ctx.Registry, container, keyItem)
		if err != nil {
			return binaryStatus(statusFor(err))
		}
		if !obj.Access.CanWrite(ctx.Role.Write()) {
			return binaryStatus(StatusUnauthorized)
		}
		valItem, err := r.ReadItem()
		if err != nil {
			return binaryStatus(statusFor(err))
		}
		if valItem.Kind == binary.KindArray {
			if obj.Type != registry.TypeArray {
				return binaryStatus(StatusUnsupportedFormat)
			}
			arr, err := obj.Array()
			if err != nil {
				return binaryStatus(statusFor(err))
			}
			if !arr.WouldFit(make([]interface{}, valItem.ArrayLen)) {
				return binaryStatus(StatusBadRequest)
			}
			vals, err := binary.DecodeArrayElements(r, arr.Elem, valItem.ArrayLen)
			if err != nil {
				return binaryStatus(statusFor(err))
			}
			entries = append(entries, patchEntry{obj: obj, isArray: true, arrayVal: vals})
			continue
		}
		if err := binary.CheckAssignable(obj, valItem); err != nil {
			return binaryStatus(statusFor(err))
		}
		entries = append(entries, patchEntry{obj: obj, item: valItem})
	}

	return commitPatch(ctx, entries)
}

// commitPatch runs the second pass: commit every staged entry,
// then fire the owning group's callback at most once and the context's
// update callback at most once if any committed object's subsets intersect
// ctx.WatchedSubsets.
func commitPatch(ctx *Context, entries []patchEntry) []byte {
	firedGroups := map[uint16]bool{}
	watched := false
	for _, e := range entries {
		if err := e.commit(); err != nil {
			return binaryStatus(statusFor(err))
		}
		if e.obj.Subsets&ctx.WatchedSubsets != 0 {
			watched = true
		}
		parent, err := ctx.Registry.ByID(e.obj.ParentID)
		if err == nil && parent.Type == registry.TypeGroup && parent.Group != nil && !firedGroups[parent.ID] {
			firedGroups[parent.ID] = true
		}
	}
	for id := range firedGroups {
		parent, _ := ctx.Registry.ByID(id)
		if parent != nil && parent.Group != nil {
			if err := parent.Group(); err != nil {
				return binaryStatus(statusFor(err))
			}
		}
	}
	if watched && ctx.UpdateCallback != nil {
		ctx.UpdateCallback()
	}
	return binaryStatus(StatusChanged)
}

func binaryPost(ctx *Context, ep endpointRef, r *binary.Reader) []byte {
	res, err := resolveEndpoint(ctx, ep)
	if err != nil {
		return binaryStatus(statusFor(err))
	}
	obj := res.Object

	switch obj.Type {
	case registry.TypeExec:
		return binaryExec(ctx, obj, r)
	case registry.TypeSubset:
		return binarySubsetMember(ctx, obj, r, true)
	default:
		return binaryStatus(StatusMethodNotAllowed)
	}
}

func binaryExec(ctx *Context, obj *registry.Object, r *binary.Reader) []byte {
	if !obj.Access.CanWrite(ctx.Role.Write()) {
		return binaryStatus(StatusUnauthorized)
	}
	params := ctx.Registry.Children(obj.ID)
	var args []interface{}
	if r.Remaining() > 0 {
		hdr, err := r.ReadItem()
		if err != nil {
			return binaryStatus(statusFor(err))
		}
		if hdr.Kind != binary.KindArray {
			return binaryStatus(StatusBadRequest)
		}
		if hdr.ArrayLen != len(params) {
			return binaryStatus(StatusBadRequest)
		}
		args = make([]interface{}, len(params))
		for i, p := range params {
			item, err := r.ReadItem()
			if err != nil {
				return binaryStatus(statusFor(err))
			}
			v, err := scalarForParam(p, item)
			if err != nil {
				return binaryStatus(statusFor(err))
			}
			args[i] = v
		}
	} else if len(params) != 0 {
		return binaryStatus(StatusBadRequest)
	}
	if obj.Exec == nil {
		return binaryStatus(StatusInternal)
	}
	if _, err := obj.Exec(args); err != nil {
		return binaryStatus(statusFor(err))
	}
	return binaryStatus(StatusValid)
}

func scalarForParam(param *registry.Object, item binary.Item) (interface{}, error) {
	switch param.Type {
	case registry.TypeBool:
		if item.Kind != binary.KindBool {
			return nil, registry.ErrUnsupportedFormat
		}
		return item.Bool, nil
	case registry.TypeF32, registry.TypeDecFrac:
		return item.AsFloat()
	case registry.TypeString:
		if item.Kind != binary.KindText {
			return nil, registry.ErrUnsupportedFormat
		}
		return item.Text, nil
	default:
		return item.AsInt()
	}
}

func binarySubsetMember(ctx *Context, sub *registry.Object, r *binary.Reader, set bool) []byte {
	if !sub.Access.CanWrite(ctx.Role.Write()) {
		return binaryStatus(StatusUnauthorized)
	}
	if r.Remaining() == 0 {
		return binaryStatus(StatusBadRequest)
	}
	item, err := r.ReadItem()
	if err != nil {
		return binaryStatus(statusFor(err))
	}
	var target *registry.Object
	switch item.Kind {
	case binary.KindUint:
		target, err = ctx.Registry.ByID(uint16(item.Uint))
	case binary.KindText:
		target, err = resolveSubsetTarget(ctx.Registry, item.Text)
	default:
		return binaryStatus(StatusBadRequest)
	}
	if err != nil {
		return binaryStatus(statusFor(err))
	}
	ctx.Registry.SetSubsetBit(target, uint16(sub.Detail), set)
	if set {
		return binaryStatus(StatusChanged)
	}
	return binaryStatus(StatusDeleted)
}

func binaryDelete(ctx *Context, ep endpointRef, r *binary.Reader) []byte {
	res, err := resolveEndpoint(ctx, ep)
	if err != nil {
		return binaryStatus(statusFor(err))
	}
	if res.Object.Type != registry.TypeSubset {
		return binaryStatus(StatusMethodNotAllowed)
	}
	return binarySubsetMember(ctx, res.Object, r, false)
}
