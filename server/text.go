package server

import (
	"fmt"
	"strings"

	"github.com/thingset-io/thingset-core/registry"
	"github.com/thingset-io/thingset-core/wire/text"
)

// Text method characters. '!' and '+' both reach POST semantics; which one
// a client uses is honored regardless, since the handler branches on the
// resolved object's type (EXEC vs SUBSET), not on the character.
const (
	charGetOrFetch byte = '?'
	charPatch      byte = '='
	charPostExec   byte = '!'
	charPostAppend byte = '+'
	charDelete     byte = '-'
)

// DispatchText runs one text-encoded request to completion and returns the
// complete response line.
func DispatchText(ctx *Context, req string) string {
	ctx.lock()
	defer ctx.unlock()

	if len(req) == 0 {
		return textStatusLine(ctx, StatusBadRequest, "")
	}
	respBuf, err := ctx.acquireBuffer()
	if err != nil {
		return textStatusLine(ctx, StatusInternal, "")
	}
	defer ctx.releaseBuffer(respBuf)

	method := req[0]
	rest := req[1:]
	path, payload := splitPathPayload(rest)

	var resp string
	switch method {
	case charGetOrFetch:
		if strings.TrimSpace(payload) == "" {
			resp = textGet(ctx, path)
		} else {
			resp = textFetch(ctx, path, payload)
		}
	case charPatch:
		resp = textPatch(ctx, path, payload)
	case charPostExec, charPostAppend:
		resp = textPost(ctx, path, payload)
	case charDelete:
		resp = textDelete(ctx, path, payload)
	default:
		resp = textStatusLine(ctx, StatusMethodNotAllowed, "")
	}
	if respBuf != nil && len(resp) > cap(respBuf) {
		return textStatusLine(ctx, StatusResponseTooLarge, "")
	}
	return resp
}

func splitPathPayload(s string) (path, payload string) {
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

func textStatusLine(ctx *Context, s Status, payload string) string {
	var b strings.Builder
	b.WriteByte(':')
	fmt.Fprintf(&b, "%02X", byte(s))
	if !ctx.CompactResponses {
		b.WriteByte(' ')
		b.WriteString(s.text())
	}
	b.WriteByte('.')
	if payload != "" {
		b.WriteByte(' ')
		b.WriteString(payload)
	}
	return b.String()
}

func textDiscover(ctx *Context, kind discoverKind) string {
	all := ctx.Registry.All()
	parts := make([]string, len(all))
	for i, o := range all {
		if kind == discoverIDs {
			parts[i] = fmt.Sprintf("%d", o.ID)
		} else {
			parts[i] = text.RenderString(fullPath(ctx.Registry, o))
		}
	}
	return textStatusLine(ctx, StatusContent, "["+strings.Join(parts, ",")+"]")
}

func textGet(ctx *Context, path string) string {
	if kind, ok := textDiscoverKind(path); ok {
		return textDiscover(ctx, kind)
	}
	res, err := ctx.Registry.ResolvePath(path)
	if err != nil {
		return textStatusLine(ctx, statusFor(err), "")
	}
	obj := res.Object

	if res.HasRecord {
		if !obj.Access.CanRead(ctx.Role.Read()) {
			return textStatusLine(ctx, StatusUnauthorized, "")
		}
		s, err := text.EncodeArrayElement(obj, res.RecordIndex)
		if err != nil {
			return textStatusLine(ctx, statusFor(err), "")
		}
		return textStatusLine(ctx, StatusContent, s)
	}

	if !obj.Type.IsContainer() {
		if !obj.Access.CanRead(ctx.Role.Read()) {
			return textStatusLine(ctx, StatusUnauthorized, "")
		}
		s, err := text.EncodeValue(obj)
		if err != nil {
			return textStatusLine(ctx, statusFor(err), "")
		}
		return textStatusLine(ctx, StatusContent, s)
	}

	if obj.Type == registry.TypeExec && !res.Listing {
		return textStatusLine(ctx, StatusBadRequest, "")
	}

	children := ctx.Registry.Children(obj.ID)
	if res.Listing {
		parts := make([]string, len(children))
		for i, c := range children {
			parts[i] = text.RenderString(c.Name)
		}
		return textStatusLine(ctx, StatusContent, "["+strings.Join(parts, ",")+"]")
	}

	readable := readableChildren(children, ctx.Role.Read())
	parts := make([]string, len(readable))
	for i, c := range readable {
		if c.Type.IsContainer() || c.Type == registry.TypeSubset {
			parts[i] = "null"
			continue
		}
		s, err := text.EncodeValue(c)
		if err != nil {
			return textStatusLine(ctx, statusFor(err), "")
		}
		parts[i] = s
	}
	return textStatusLine(ctx, StatusContent, "["+strings.Join(parts, ",")+"]")
}

// textDiscoverKind recognizes the path forms that address the virtual
// discovery endpoints in text mode: the literal names the dispatcher
// reserves, mirroring the binary wire's 0x16/0x17 bytes.
func textDiscoverKind(path string) (discoverKind, bool) {
	switch path {
	case "_ids":
		return discoverIDs, true
	case "_paths":
		return discoverPaths, true
	default:
		return discoverNone, false
	}
}

func textFetch(ctx *Context, path, payload string) string {
	res, err := ctx.Registry.ResolvePath(path)
	if err != nil {
		return textStatusLine(ctx, statusFor(err), "")
	}
	container := res.Object
	if !container.Type.IsContainer() {
		return textStatusLine(ctx, StatusBadRequest, "")
	}

	val, err := text.ParsePayload([]byte(payload), ctx.tokenCapacity())
	if err != nil {
		return textStatusLine(ctx, statusFor(err), "")
	}

	var targets []*registry.Object
	single := false
	switch val.Kind {
	case text.VKUndefined, text.VKNull:
		targets = readableChildren(ctx.Registry.Children(container.ID), ctx.Role.Read())
	case text.VKString, text.VKInt:
		single = true
		t, err := resolveFetchChildText(ctx.Registry, container, val)
		if err != nil {
			return textStatusLine(ctx, statusFor(err), "")
		}
		targets = []*registry.Object{t}
	case text.VKArray:
		for _, item := range val.Array {
			t, err := resolveFetchChildText(ctx.Registry, container, item)
			if err != nil {
				return textStatusLine(ctx, statusFor(err), "")
			}
			targets = append(targets, t)
		}
	default:
		return textStatusLine(ctx, StatusBadRequest, "")
	}

	for _, t := range targets {
		if !t.Access.CanRead(ctx.Role.Read()) {
			return textStatusLine(ctx, StatusUnauthorized, "")
		}
	}

	if single {
		s, err := text.EncodeValue(targets[0])
		if err != nil {
			return textStatusLine(ctx, statusFor(err), "")
		}
		return textStatusLine(ctx, StatusContent, s)
	}
	parts := make([]string, len(targets))
	for i, t := range targets {
		s, err := text.EncodeValue(t)
		if err != nil {
			return textStatusLine(ctx, statusFor(err), "")
		}
		parts[i] = s
	}
	return textStatusLine(ctx, StatusContent, "["+strings.Join(parts, ",")+"]")
}

// resolveFetchChildText resolves a FETCH array element by name or id,
// mirroring the binary wire's resolveFetchChild.
func resolveFetchChildText(reg *registry.Registry, container *registry.Object, v text.Value) (*registry.Object, error) {
	switch v.Kind {
	case text.VKString:
		return resolveChildByName(reg, container, v.Text)
	case text.VKInt:
		return resolveChildByID(reg, container, uint16(v.Int))
	default:
		return nil, registry.ErrBadRequest
	}
}

// textPatchEntry is a validated, not-yet-committed write staged during a
// PATCH's first pass, mirroring the binary wire's patchEntry: array values
// are fully decoded here so a bad element is caught before anything commits.
type textPatchEntry struct {
	obj      *registry.Object
	val      text.Value
	isArray  bool
	arrayVal []interface{}
}

func (e textPatchEntry) commit() error {
	if e.isArray {
		arr, err := e.obj.Array()
		if err != nil {
			return err
		}
		return arr.Set(e.arrayVal)
	}
	return text.DecodeInto(e.obj, e.val)
}

func textPatch(ctx *Context, path, payload string) string {
	res, err := ctx.Registry.ResolvePath(path)
	if err != nil {
		return textStatusLine(ctx, statusFor(err), "")
	}
	container := res.Object
	if !container.Type.IsContainer() {
		return textStatusLine(ctx, StatusBadRequest, "")
	}

	val, err := text.ParsePayload([]byte(payload), ctx.tokenCapacity())
	if err != nil {
		return textStatusLine(ctx, statusFor(err), "")
	}
	if val.Kind != text.VKObject {
		return textStatusLine(ctx, StatusBadRequest, "")
	}

	entries := make([]textPatchEntry, 0, len(val.Object))
	for _, kv := range val.Object {
		obj, err := resolvePatchKey(ctx.Registry, container, kv.Key)
		if err != nil {
			return textStatusLine(ctx, statusFor(err), "")
		}
		if !obj.Access.CanWrite(ctx.Role.Write()) {
			return textStatusLine(ctx, StatusUnauthorized, "")
		}
		if kv.Value.Kind == text.VKArray {
			if obj.Type != registry.TypeArray {
				return textStatusLine(ctx, StatusUnsupportedFormat, "")
			}
			arr, err := obj.Array()
			if err != nil {
				return textStatusLine(ctx, statusFor(err), "")
			}
			vals, err := text.DecodeArrayElements(arr.Elem, kv.Value.Array)
			if err != nil {
				return textStatusLine(ctx, statusFor(err), "")
			}
			if !arr.WouldFit(vals) {
				return textStatusLine(ctx, StatusBadRequest, "")
			}
			entries = append(entries, textPatchEntry{obj: obj, isArray: true, arrayVal: vals})
			continue
		}
		if err := text.CheckAssignable(obj, kv.Value); err != nil {
			return textStatusLine(ctx, statusFor(err), "")
		}
		entries = append(entries, textPatchEntry{obj: obj, val: kv.Value})
	}

	return commitTextPatch(ctx, entries)
}

func commitTextPatch(ctx *Context, entries []textPatchEntry) string {
	firedGroups := map[uint16]bool{}
	watched := false
	for _, e := range entries {
		if err := e.commit(); err != nil {
			return textStatusLine(ctx, statusFor(err), "")
		}
		if e.obj.Subsets&ctx.WatchedSubsets != 0 {
			watched = true
		}
		parent, err := ctx.Registry.ByID(e.obj.ParentID)
		if err == nil && parent.Type == registry.TypeGroup && parent.Group != nil {
			firedGroups[parent.ID] = true
		}
	}
	for id := range firedGroups {
		parent, _ := ctx.Registry.ByID(id)
		if parent != nil && parent.Group != nil {
			if err := parent.Group(); err != nil {
				return textStatusLine(ctx, statusFor(err), "")
			}
		}
	}
	if watched && ctx.UpdateCallback != nil {
		ctx.UpdateCallback()
	}
	return textStatusLine(ctx, StatusChanged, "")
}

func textPost(ctx *Context, path, payload string) string {
	res, err := ctx.Registry.ResolvePath(path)
	if err != nil {
		return textStatusLine(ctx, statusFor(err), "")
	}
	obj := res.Object

	switch obj.Type {
	case registry.TypeExec:
		return textExec(ctx, obj, payload)
	case registry.TypeSubset:
		return textSubsetMember(ctx, obj, payload, true)
	default:
		return textStatusLine(ctx, StatusMethodNotAllowed, "")
	}
}

func textExec(ctx *Context, obj *registry.Object, payload string) string {
	if !obj.Access.CanWrite(ctx.Role.Write()) {
		return textStatusLine(ctx, StatusUnauthorized, "")
	}
	params := ctx.Registry.Children(obj.ID)
	val, err := text.ParsePayload([]byte(payload), ctx.tokenCapacity())
	if err != nil {
		return textStatusLine(ctx, statusFor(err), "")
	}
	var items []text.Value
	switch val.Kind {
	case text.VKUndefined:
		items = nil
	case text.VKArray:
		items = val.Array
	default:
		items = []text.Value{val}
	}
	if len(items) != len(params) {
		return textStatusLine(ctx, StatusBadRequest, "")
	}
	args := make([]interface{}, len(params))
	for i, p := range params {
		v, err := scalarForParamText(p, items[i])
		if err != nil {
			return textStatusLine(ctx, statusFor(err), "")
		}
		args[i] = v
	}
	if obj.Exec == nil {
		return textStatusLine(ctx, StatusInternal, "")
	}
	if _, err := obj.Exec(args); err != nil {
		return textStatusLine(ctx, statusFor(err), "")
	}
	return textStatusLine(ctx, StatusValid, "")
}

func scalarForParamText(param *registry.Object, v text.Value) (interface{}, error) {
	switch param.Type {
	case registry.TypeBool:
		if v.Kind != text.VKBool {
			return nil, registry.ErrUnsupportedFormat
		}
		return v.Bool, nil
	case registry.TypeF32, registry.TypeDecFrac:
		if v.Kind == text.VKFloat {
			return v.Float, nil
		}
		if v.Kind == text.VKInt {
			return float64(v.Int), nil
		}
		return nil, registry.ErrUnsupportedFormat
	case registry.TypeString:
		if v.Kind != text.VKString {
			return nil, registry.ErrUnsupportedFormat
		}
		return v.Text, nil
	default:
		if v.Kind != text.VKInt {
			return nil, registry.ErrUnsupportedFormat
		}
		return v.Int, nil
	}
}

func textSubsetMember(ctx *Context, sub *registry.Object, payload string, set bool) string {
	if !sub.Access.CanWrite(ctx.Role.Write()) {
		return textStatusLine(ctx, StatusUnauthorized, "")
	}
	val, err := text.ParsePayload([]byte(payload), ctx.tokenCapacity())
	if err != nil {
		return textStatusLine(ctx, statusFor(err), "")
	}
	var target *registry.Object
	switch val.Kind {
	case text.VKString:
		target, err = resolveSubsetTarget(ctx.Registry, val.Text)
	case text.VKInt:
		target, err = ctx.Registry.ByID(uint16(val.Int))
	default:
		return textStatusLine(ctx, StatusBadRequest, "")
	}
	if err != nil {
		return textStatusLine(ctx, statusFor(err), "")
	}
	ctx.Registry.SetSubsetBit(target, uint16(sub.Detail), set)
	if set {
		return textStatusLine(ctx, StatusChanged, "")
	}
	return textStatusLine(ctx, StatusDeleted, "")
}

func textDelete(ctx *Context, path, payload string) string {
	res, err := ctx.Registry.ResolvePath(path)
	if err != nil {
		return textStatusLine(ctx, statusFor(err), "")
	}
	if res.Object.Type != registry.TypeSubset {
		return textStatusLine(ctx, StatusMethodNotAllowed, "")
	}
	return textSubsetMember(ctx, res.Object, payload, false)
}
